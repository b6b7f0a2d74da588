package returns

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"docucontrol/internal/logger"
)

// transmittalFromAttachments looks for the vendor's transmittal code in the
// text of PDF attachments. Unreadable PDFs are skipped.
func transmittalFromAttachments(v Vendor, attachments []*enmime.Part) *string {
	for _, att := range attachments {
		if !strings.HasSuffix(strings.ToLower(att.FileName), ".pdf") {
			continue
		}
		text, err := pdfText(att.Content)
		if err != nil {
			logger.Log.WithField("attachment", att.FileName).Debugf("pdf skipped: %v", err)
			continue
		}
		if code := v.ExtractTransmittal(text); code != nil {
			return code
		}
	}
	return nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
