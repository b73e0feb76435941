package record

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrEmptyServiceID is returned when a record is built without its key
var ErrEmptyServiceID = errors.New("service id is required")

// ServiceData is the normalized service record every collector produces.
// Nil pointers mean the field was not extracted, never that it is known to be empty.
type ServiceData struct {
	// Identifiers
	ServiceID     string  `json:"service_id"`
	EngineeringID *string `json:"engineering_id,omitempty"`
	OrderNumber   *string `json:"order_number,omitempty"`

	// Client
	ClientName *string `json:"client_name,omitempty"`
	ClientSite *string `json:"client_site,omitempty"`

	// LAN side
	LANIP      *string `json:"lan_ip,omitempty"`
	LANNetwork *string `json:"lan_network,omitempty"`
	LANMask    *string `json:"lan_mask,omitempty"`
	Bandwidth  *int    `json:"bandwidth,omitempty"` // kbps

	// CPE
	CPEName           *string `json:"cpe_name,omitempty"`
	CPEModel          *string `json:"cpe_model,omitempty"`
	CPEManagementIP   *string `json:"cpe_management_ip,omitempty"`
	CPEManagementVLAN *int    `json:"cpe_management_vlan,omitempty"`
	CPEInterfaceVLAN  *int    `json:"cpe_interface_vlan,omitempty"`
	CPEWANIP          *string `json:"cpe_wan_ip,omitempty"`
	CPEPort           *string `json:"cpe_port,omitempty"`

	// Aggregation ring
	RingName        *string `json:"ring_name,omitempty"` // ME-XXXX_XXXX
	AggregatorName  *string `json:"aggregator_name,omitempty"`
	AggregatorPort1 *string `json:"aggregator_port_1,omitempty"`
	AggregatorPort2 *string `json:"aggregator_port_2,omitempty"`
	BVIVLAN         *int    `json:"bvi_vlan,omitempty"`
	WANAggIP        *string `json:"wan_aggi_ip,omitempty"`
	WANMask         *string `json:"wan_mask,omitempty"`

	// Status
	Status     *string    `json:"status,omitempty"`
	StatusDate *time.Time `json:"status_date,omitempty"`

	// Provenance
	SourceSystem string            `json:"source_system"`
	CollectedAt  time.Time         `json:"collected_at"`
	RawData      map[string]string `json:"raw_data"`
}

// New creates an empty record for serviceID
func New(serviceID, source string, collectedAt time.Time) (ServiceData, error) {
	if serviceID == "" {
		return ServiceData{}, ErrEmptyServiceID
	}
	return ServiceData{
		ServiceID:    serviceID,
		SourceSystem: source,
		CollectedAt:  collectedAt,
		RawData:      map[string]string{},
	}, nil
}

func (d *ServiceData) textSlot(f Field) **string {
	switch f {
	case FieldEngineeringID:
		return &d.EngineeringID
	case FieldOrderNumber:
		return &d.OrderNumber
	case FieldClientName:
		return &d.ClientName
	case FieldClientSite:
		return &d.ClientSite
	case FieldLANIP:
		return &d.LANIP
	case FieldLANNetwork:
		return &d.LANNetwork
	case FieldLANMask:
		return &d.LANMask
	case FieldCPEName:
		return &d.CPEName
	case FieldCPEModel:
		return &d.CPEModel
	case FieldCPEManagementIP:
		return &d.CPEManagementIP
	case FieldCPEWANIP:
		return &d.CPEWANIP
	case FieldCPEPort:
		return &d.CPEPort
	case FieldRingName:
		return &d.RingName
	case FieldAggregatorName:
		return &d.AggregatorName
	case FieldAggregatorPort1:
		return &d.AggregatorPort1
	case FieldAggregatorPort2:
		return &d.AggregatorPort2
	case FieldWANAggIP:
		return &d.WANAggIP
	case FieldWANMask:
		return &d.WANMask
	case FieldStatus:
		return &d.Status
	}
	return nil
}

func (d *ServiceData) numberSlot(f Field) **int {
	switch f {
	case FieldBandwidth:
		return &d.Bandwidth
	case FieldCPEManagementVLAN:
		return &d.CPEManagementVLAN
	case FieldCPEInterfaceVLAN:
		return &d.CPEInterfaceVLAN
	case FieldBVIVLAN:
		return &d.BVIVLAN
	}
	return nil
}

// SetText assigns a text field
func (d *ServiceData) SetText(f Field, v string) error {
	slot := d.textSlot(f)
	if slot == nil {
		return fmt.Errorf("field %s is not a text field", f)
	}
	*slot = &v
	return nil
}

// SetNumber assigns a numeric field. Negative values are rejected.
func (d *ServiceData) SetNumber(f Field, n int) error {
	slot := d.numberSlot(f)
	if slot == nil {
		return fmt.Errorf("field %s is not a numeric field", f)
	}
	if n < 0 {
		return fmt.Errorf("field %s: negative value %d", f, n)
	}
	*slot = &n
	return nil
}

// SetTime assigns a timestamp field
func (d *ServiceData) SetTime(f Field, t time.Time) error {
	if f != FieldStatusDate {
		return fmt.Errorf("field %s is not a time field", f)
	}
	d.StatusDate = &t
	return nil
}

// Has reports whether a field was extracted
func (d *ServiceData) Has(f Field) bool {
	_, ok := d.Value(f)
	return ok
}

// Value returns the printable value of a field and whether it is present
func (d *ServiceData) Value(f Field) (string, bool) {
	if slot := d.textSlot(f); slot != nil {
		if *slot == nil {
			return "", false
		}
		return **slot, true
	}
	if slot := d.numberSlot(f); slot != nil {
		if *slot == nil {
			return "", false
		}
		return strconv.Itoa(**slot), true
	}
	if f == FieldStatusDate && d.StatusDate != nil {
		return d.StatusDate.Format(time.RFC3339), true
	}
	return "", false
}

// FieldValue is a populated canonical field
type FieldValue struct {
	Field Field
	Value string
}

// Fields returns the populated canonical fields in declaration order
func (d *ServiceData) Fields() []FieldValue {
	var out []FieldValue
	for _, f := range AllFields() {
		if v, ok := d.Value(f); ok {
			out = append(out, FieldValue{Field: f, Value: v})
		}
	}
	return out
}
