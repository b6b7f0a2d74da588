package lookup

import (
	"strings"

	"docucontrol/internal"
)

// Notification address groups. Addresses are ';'-wrapped so they can be
// concatenated straight into a recipients field.
const (
	AddrLuisBravo      = ";luis-bravo@eipsa.es;"
	AddrAnaCalvo       = ";ana-calvo@eipsa.es;"
	AddrSandraSanz     = ";sandra-sanz@eipsa.es;"
	AddrJorgeValtierra = ";jorge-valtierra@eipsa.es;"
	AddrCarlosCrespo   = ";carlos-crespohor@eipsa.es;"

	GroupTo = ";santos-sanchez@eipsa.es;"
	GroupCC = ";jesus-martinez@eipsa.es;ernesto-carrillo@eipsa.es;"
)

type Vendor string

const (
	VendorTR     Vendor = "TR"
	VendorGAIA   Vendor = "GAIA"
	VendorPRODOC Vendor = "PRODOC"
)

type pair struct {
	key   string
	value string
}

// Tables holds every static mapping used by the normalizers. Values are
// built once by Default and only read afterwards.
type Tables struct {
	clients     map[string]string
	materials   map[Vendor]map[string]string
	orderByPO   map[string]string
	docTypes    map[Vendor]map[string]internal.DocType
	statuses    map[Vendor]map[string]internal.Status
	critical    map[internal.DocType]string
	responsible []pair
	initials    map[Vendor]map[string]string
	support     map[string]string
}

func Default() *Tables {
	baseDocTypes := map[string]internal.DocType{
		"PLG":  internal.DocTypeDrawings,
		"DWG":  internal.DocTypeDrawings,
		"CAL":  internal.DocTypeCalculations,
		"ESP":  internal.DocTypeCalcAndDrawings,
		"CER":  internal.DocTypeCertificate,
		"NACE": internal.DocTypeCertificate,
		"DOS":  internal.DocTypeDossier,
		"LIS":  internal.DocTypeList,
		"VDB":  internal.DocTypeList,
		"DL":   internal.DocTypeList,
		"PRC":  internal.DocTypeProcedures,
		"MAN":  internal.DocTypeManual,
		"PLN":  internal.DocTypeInspectionPlan,
		"PLD":  internal.DocTypeNameplate,
		"CAT":  internal.DocTypeCatalog,
	}
	with := func(extra map[string]internal.DocType) map[string]internal.DocType {
		out := make(map[string]internal.DocType, len(baseDocTypes)+len(extra))
		for k, v := range baseDocTypes {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	baseInitials := map[string]string{
		AddrLuisBravo:  "LB",
		AddrAnaCalvo:   "AC",
		AddrSandraSanz: "SS",
	}
	initials := func(carlos string) map[string]string {
		out := map[string]string{AddrCarlosCrespo: carlos}
		for k, v := range baseInitials {
			out[k] = v
		}
		return out
	}

	t := &Tables{
		clients: map[string]string{
			"21472": "TECHNIP/SYNKEDIA",
			"10121": "DUQM",
			"10150": "BAPCO",
			"10160": "CRISP",
			"10230": "MARJAN",
			"10318": "RAS TANURA",
			"10330": "NEW PTA COMPLEX",
			"10370": "QATAR EPC3",
			"10380": "YPF",
			"10400": "ADNOC DALMA",
			"10430": "QATAR EPC4",
		},
		materials: map[Vendor]map[string]string{
			VendorTR: {
				"411": "TEMPERATURA",
				"412": "TEMPERATURA",
				"610": "BIMETÁLICOS",
				"620": "TEMPERATURA",
				"640": "TEMPERATURA",
				"710": "NIVEL VIDRIO",
				"740": "TUBERÍAS",
				"910": "CAUDAL",
				"911": "SALTOS MULTIPLES",
				"920": "ORIFICIOS",
				"960": "ORIFICIOS",
				"010": "VALVULAS",
			},
			VendorGAIA: {
				"214726C":    "CAUDAL",
				"7070000087": "TEMPERATURA",
			},
			VendorPRODOC: {
				"7011318362": "CAUDAL",
				"7070000087": "TEMPERATURA",
				"7011319592": "TEMPERATURA",
				"7011294464": "PLACAS",
				"600017293":  "P-23/097",
				"7011265051": "P-24/006",
				"7080111164": "P-24/023",
				"7080113517": "P-24/044",
				"7011295889": "P-24/050",
				"7080115423": "P-24/058",
				"7080115700": "P-24/060",
			},
		},
		orderByPO: map[string]string{
			"7011318362": "P-24/091",
			"7070000087": "P-24/054",
			"7011319592": "P-24/073",
			"7011294464": "P-23/087",
			"600017293":  "P-23/097",
			"7011265051": "P-24/006",
			"7080111164": "P-24/023",
			"7080113517": "P-24/044",
			"7011295889": "P-24/050",
			"7080115423": "P-24/058",
			"7080115700": "P-24/060",
		},
		docTypes: map[Vendor]map[string]internal.DocType{
			VendorTR: with(map[string]internal.DocType{
				"ITP": internal.DocTypeProcedures,
			}),
			VendorPRODOC: with(map[string]internal.DocType{
				"ITP": internal.DocTypeProcedures,
				"SPL": internal.DocTypeSpares,
			}),
			VendorGAIA: with(map[string]internal.DocType{
				"ITP":  internal.DocTypeInspectionPlan,
				"SPL":  internal.DocTypeSpares,
				"WD":   internal.DocTypeWelding,
				"VDDL": internal.DocTypeList,
				"IND":  internal.DocTypeIndex,
				"NDE":  internal.DocTypeProcedures,
				"PH":   internal.DocTypeProcedures,
				"DD":   internal.DocTypeDossier,
			}),
		},
		statuses: map[Vendor]map[string]internal.Status{
			VendorTR: {
				"A - REJECTED":                     internal.StatusRejected,
				"B - REVIEWED WITH MAJOR COMMENTS": internal.StatusMajorComments,
				"C - REVIEWED WITH MINOR COMMENTS": internal.StatusMinorComments,
				"F - REVIEWED WITHOUT COMMENTS":    internal.StatusApproved,
				"F - ACCEPTED WITHOUT COMMENTS":    internal.StatusApproved,
				"W - ISSUED FOR CERTIFICATION":     internal.StatusCertification,
				"M - VOID":                         internal.StatusDeleted,
				"R - REVIEWED AS BUILT":            internal.StatusApproved,
			},
			VendorGAIA: {
				"Code 1": internal.StatusMajorComments,
				"Code 2": internal.StatusMinorComments,
				"Code 3": internal.StatusApproved,
				"Code 4": internal.StatusInformative,
				"Code 5": internal.StatusRejected,
			},
			VendorPRODOC: {
				"A - REJECTED":              internal.StatusRejected,
				"1 - WITH COMMENTS":         internal.StatusMajorComments,
				"2 - WITHOUT COMMENTS":      internal.StatusApproved,
				"2I - FOR INFORMATION ONLY": internal.StatusInformative,
				"3 - WITH MINOR COMMENTS":   internal.StatusMinorComments,
			},
		},
		critical: map[internal.DocType]string{
			internal.DocTypeDrawings:        internal.CriticalYes,
			internal.DocTypeCalculations:    internal.CriticalYes,
			internal.DocTypeCalcAndDrawings: internal.CriticalYes,
			internal.DocTypeManual:          internal.CriticalYes,
			internal.DocTypeInspectionPlan:  internal.CriticalYes,
			internal.DocTypeCatalog:         internal.CriticalYes,
			internal.DocTypeList:            internal.CriticalYes,
			internal.DocTypeCertificate:     internal.CriticalNo,
			internal.DocTypeDossier:         internal.CriticalNo,
			internal.DocTypeProcedures:      internal.CriticalNo,
			internal.DocTypeNameplate:       internal.CriticalNo,
			internal.DocTypeSpares:          internal.CriticalNo,
			internal.DocTypeIndex:           internal.CriticalNo,
		},
		responsible: []pair{
			{"P-21/003", AddrLuisBravo},
			{"P-22/001", AddrLuisBravo},
			{"P-22/002", AddrLuisBravo},
			{"P-22/006", AddrLuisBravo},
			{"P-22/007", AddrLuisBravo},
			{"P-22/009", AddrLuisBravo},
			{"P-22/003", AddrAnaCalvo},
			{"P-22/004", AddrAnaCalvo},
			{"P-22/005", AddrAnaCalvo},
			{"P-22/008", AddrAnaCalvo},
			{"P-22/010", AddrAnaCalvo},
		},
		initials: map[Vendor]map[string]string{
			VendorTR:     initials("CCH"),
			VendorGAIA:   initials("CC"),
			VendorPRODOC: initials("CC"),
		},
		support: map[string]string{
			"CER": AddrJorgeValtierra,
			"LIS": AddrJorgeValtierra,
			"PRC": AddrJorgeValtierra,
			"MAN": AddrJorgeValtierra,
			"CAT": AddrJorgeValtierra,
			"DOS": AddrJorgeValtierra,
			"SPL": AddrJorgeValtierra,
			"DD":  AddrJorgeValtierra,
		},
	}
	return t
}

// Client resolves the client name from the first five digits of a PO.
// Unknown prefixes give "".
func (t *Tables) Client(po string) string {
	po = strings.TrimSpace(po)
	if len(po) < 5 {
		return ""
	}
	return t.clients[po[:5]]
}

// Material returns the category for a vendor code and whether it was mapped.
func (t *Tables) Material(v Vendor, code string) (string, bool) {
	m, ok := t.materials[v][strings.TrimSpace(code)]
	return m, ok
}

func (t *Tables) OrderForPO(po string) (string, bool) {
	o, ok := t.orderByPO[strings.TrimSpace(po)]
	return o, ok
}

// DocType maps a document-type code; unknown codes give "".
func (t *Tables) DocType(v Vendor, code string) internal.DocType {
	return t.docTypes[v][strings.ToUpper(strings.TrimSpace(code))]
}

// Status maps a vendor status label to the canonical status; unknown labels give "".
func (t *Tables) Status(v Vendor, raw string) internal.Status {
	return t.statuses[v][strings.TrimSpace(raw)]
}

// Critical is the criticality flag of a document type, "" when unmapped.
func (t *Tables) Critical(dt internal.DocType) string {
	return t.critical[dt]
}

// CriticalForLabel is Critical for a document type read back from a
// spreadsheet, given either as its label or as a common type code.
func (t *Tables) CriticalForLabel(label string) string {
	label = strings.TrimSpace(label)
	if c, ok := t.critical[internal.DocType(label)]; ok {
		return c
	}
	return t.critical[t.DocType(VendorTR, label)]
}

// Responsible returns the address of the first entry, in table order, whose
// order key occurs anywhere in order.
func (t *Tables) Responsible(order string) (string, bool) {
	if order == "" {
		return "", false
	}
	for _, p := range t.responsible {
		if strings.Contains(order, p.key) {
			return p.value, true
		}
	}
	return "", false
}

func (t *Tables) Initials(v Vendor, address string) (string, bool) {
	i, ok := t.initials[v][address]
	return i, ok
}

// Support returns the support address for a document-type code, "" for most codes.
func (t *Tables) Support(code string) string {
	return t.support[strings.ToUpper(strings.TrimSpace(code))]
}
