package returns

import (
	"regexp"
	"strings"

	"docucontrol/internal"
)

var (
	reTRTransmittal     = regexp.MustCompile(`\d{5}-\w+-\d+`)
	reGAIATransmittal   = regexp.MustCompile(`[A-Z0-9]+(?:-[A-Z0-9]+)+`)
	rePRODOCTransmittal = regexp.MustCompile(`TL-\d{2,4}[A-Z0-9]+-VDC-\d{4}`)

	reTRDocType     = regexp.MustCompile(`^([A-Z]{2,3})`)
	reGAIADocType   = regexp.MustCompile(`-(DWG|CAL|VDDL|IND|DOS|ITP|NDE|CER|PH|DD|WD)-`)
	rePRODOCDocType = regexp.MustCompile(`-(\D{2,3})-\d`)

	reTROrder   = regexp.MustCompile(`(\d+-\d+)`)
	reGAIAOrder = regexp.MustCompile(`-(\d{2}-\d{3})-`)

	reSupplier  = regexp.MustCompile(`(S+\d+)`)
	reSubjectPO = regexp.MustCompile(`(\d{10})`)
	reGAIAPO    = regexp.MustCompile(`^(\d+[A-Z])`)
	rePOSuffix  = regexp.MustCompile(`(\d{3})$`)
	reGAIACode  = regexp.MustCompile(`Code\s\d+`)
)

var knownSuppliers = map[string]struct{}{
	"S01": {}, "S02": {}, "S03": {}, "S04": {}, "S05": {}, "S06": {}, "S07": {},
}

func match(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	if len(m) > 1 {
		return &m[1]
	}
	return &m[0]
}

// TRTransmittal finds a code like 12345-ABC-001 in a subject.
func TRTransmittal(subject string) *string { return match(reTRTransmittal, subject) }

// GAIATransmittal finds the first dash-joined uppercase code in a subject.
func GAIATransmittal(subject string) *string { return match(reGAIATransmittal, subject) }

// PRODOCTransmittal finds a code like TL-24001X-VDC-0012 in a subject.
func PRODOCTransmittal(subject string) *string { return match(rePRODOCTransmittal, subject) }

func TRDocTypeCode(vendorNumber string) *string { return match(reTRDocType, vendorNumber) }
func GAIADocTypeCode(reference string) *string { return match(reGAIADocType, reference) }
func PRODOCDocTypeCode(name string) *string { return match(rePRODOCDocType, name) }
func GAIAPO(reference string) *string { return match(reGAIAPO, reference) }
func SubjectPO(subject string) *string { return match(reSubjectPO, subject) }
func GAIAStatusCode(subject string) *string { return match(reGAIACode, subject) }
func TRMaterialCode(po string) *string { return match(rePOSuffix, po) }
func TROrder(vendorNumber string) *string { return orderNumber(match(reTROrder, vendorNumber)) }
func GAIAOrder(reference string) *string { return orderNumber(match(reGAIAOrder, reference)) }

// orderNumber turns a two-part code such as 24-001 into P-24/001.
func orderNumber(code *string) *string {
	if code == nil {
		return nil
	}
	o := "P-" + strings.ReplaceAll(*code, "-", "/")
	return &o
}

// SupplierCode reads the S-code of a vendor number, keeping only S01 to S07.
func SupplierCode(vendorNumber string) string {
	if s := match(reSupplier, vendorNumber); s != nil {
		if _, ok := knownSuppliers[*s]; ok {
			return *s
		}
	}
	return internal.DefaultSupplier
}
