package record

// Kind is the value type a canonical field holds
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Field identifies an optional canonical field of ServiceData.
// FieldNone marks a source label that is known but has no canonical home.
type Field int

const (
	FieldNone Field = iota
	FieldEngineeringID
	FieldOrderNumber
	FieldClientName
	FieldClientSite
	FieldLANIP
	FieldLANNetwork
	FieldLANMask
	FieldBandwidth
	FieldCPEName
	FieldCPEModel
	FieldCPEManagementIP
	FieldCPEManagementVLAN
	FieldCPEInterfaceVLAN
	FieldCPEWANIP
	FieldCPEPort
	FieldRingName
	FieldAggregatorName
	FieldAggregatorPort1
	FieldAggregatorPort2
	FieldBVIVLAN
	FieldWANAggIP
	FieldWANMask
	FieldStatus
	FieldStatusDate

	fieldCount
)

type fieldInfo struct {
	name string
	kind Kind
}

var fieldTable = [fieldCount]fieldInfo{
	FieldNone:              {"none", KindText},
	FieldEngineeringID:     {"engineering_id", KindText},
	FieldOrderNumber:       {"order_number", KindText},
	FieldClientName:        {"client_name", KindText},
	FieldClientSite:        {"client_site", KindText},
	FieldLANIP:             {"lan_ip", KindText},
	FieldLANNetwork:        {"lan_network", KindText},
	FieldLANMask:           {"lan_mask", KindText},
	FieldBandwidth:         {"bandwidth", KindNumber},
	FieldCPEName:           {"cpe_name", KindText},
	FieldCPEModel:          {"cpe_model", KindText},
	FieldCPEManagementIP:   {"cpe_management_ip", KindText},
	FieldCPEManagementVLAN: {"cpe_management_vlan", KindNumber},
	FieldCPEInterfaceVLAN:  {"cpe_interface_vlan", KindNumber},
	FieldCPEWANIP:          {"cpe_wan_ip", KindText},
	FieldCPEPort:           {"cpe_port", KindText},
	FieldRingName:          {"ring_name", KindText},
	FieldAggregatorName:    {"aggregator_name", KindText},
	FieldAggregatorPort1:   {"aggregator_port_1", KindText},
	FieldAggregatorPort2:   {"aggregator_port_2", KindText},
	FieldBVIVLAN:           {"bvi_vlan", KindNumber},
	FieldWANAggIP:          {"wan_aggi_ip", KindText},
	FieldWANMask:           {"wan_mask", KindText},
	FieldStatus:            {"status", KindText},
	FieldStatusDate:        {"status_date", KindTime},
}

// Valid reports whether f is a known identifier. FieldNone is valid.
func (f Field) Valid() bool {
	return f >= FieldNone && f < fieldCount
}

// Name returns the snake_case name used in JSON and CLI output
func (f Field) Name() string {
	if !f.Valid() {
		return "invalid"
	}
	return fieldTable[f].name
}

// Kind returns the value type of the field
func (f Field) Kind() Kind {
	if !f.Valid() {
		return KindText
	}
	return fieldTable[f].kind
}

func (f Field) String() string {
	return f.Name()
}

// AllFields returns every canonical field in declaration order, FieldNone excluded
func AllFields() []Field {
	fields := make([]Field, 0, fieldCount-1)
	for f := FieldNone + 1; f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// FieldByName resolves a snake_case field name
func FieldByName(name string) (Field, bool) {
	for f := FieldNone; f < fieldCount; f++ {
		if fieldTable[f].name == name {
			return f, true
		}
	}
	return FieldNone, false
}
