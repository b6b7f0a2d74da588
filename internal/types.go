package internal

import "time"

type Status string

const (
	StatusSent          Status = "Enviado"
	StatusMajorComments Status = "Com. Mayores"
	StatusMinorComments Status = "Com. Menores"
	StatusApproved      Status = "Aprobado"
	StatusRejected      Status = "Rechazado"
	StatusInformative   Status = "Informativo"
	StatusNotSent       Status = "Sin Enviar"
	StatusDeleted       Status = "Eliminado"
	StatusCertification Status = "Certificación"
	StatusCommented     Status = "Comentado" // only ever produced by the ERP itself
)

// SubmittedLabel is the external wording for StatusSent.
const SubmittedLabel = "Submitted"

var canonicalStatuses = map[Status]struct{}{
	StatusSent:          {},
	StatusMajorComments: {},
	StatusMinorComments: {},
	StatusApproved:      {},
	StatusRejected:      {},
	StatusInformative:   {},
	StatusNotSent:       {},
	StatusDeleted:       {},
	StatusCertification: {},
}

func (s Status) Canonical() bool {
	_, ok := canonicalStatuses[s]
	return ok
}

type DocType string

const (
	DocTypeDrawings        DocType = "Planos"
	DocTypeCalculations    DocType = "Cálculos"
	DocTypeCalcAndDrawings DocType = "Cálculos y Planos"
	DocTypeCertificate     DocType = "Certificado"
	DocTypeDossier         DocType = "Dossier"
	DocTypeList            DocType = "Listado"
	DocTypeProcedures      DocType = "Procedimientos"
	DocTypeManual          DocType = "Manual"
	DocTypeInspectionPlan  DocType = "PPI"
	DocTypeNameplate       DocType = "Nameplate"
	DocTypeCatalog         DocType = "Catalogo"
	DocTypeSpares          DocType = "Repuestos"
	DocTypeWelding         DocType = "Soldadura"
	DocTypeIndex           DocType = "Indice"
)

const (
	CriticalYes = "Sí"
	CriticalNo  = "No"

	DefaultSupplier = "S00"
)

// Canonical Document Row column labels, in output order.
const (
	ColOrder          = "Nº Pedido"
	ColSupplier       = "Supp."
	ColResponsible    = "Responsable"
	ColClient         = "Cliente"
	ColMaterial       = "Material"
	ColPO             = "PO"
	ColInternalDoc    = "Doc. EIPSA"
	ColExternalDoc    = "Doc. Cliente"
	ColTitle          = "Título"
	ColRevision       = "Rev."
	ColClientRevision = "TR Rev."
	ColStatus         = "Estado"
	ColDocType        = "Tipo de documento"
	ColCritical       = "Crítico"
	ColTransmittal    = "Nº Transmittal"
	ColDate           = "Fecha"
)

type DocumentRow struct {
	OrderNumber    *string
	Supplier       string
	Responsible    *string
	Client         string
	Material       *string
	PO             *string
	InternalDoc    *string
	ExternalDoc    *string
	Title          *string
	Revision       *string
	ClientRevision *string
	Status         Status
	DocType        DocType
	Critical       string
	Transmittal    *string
	Date           time.Time
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	Vendor     string
	RawRef     string
}

type ReturnLogRow struct {
	EmailID int
	Vendor  string
	Row     DocumentRow
}

type ReportRun struct {
	ID            string
	Kind          string
	ReferenceDate time.Time
	OutputPath    string
	Rows          int
}
