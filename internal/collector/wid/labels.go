package wid

import (
	"netmigration/widcollector/internal/normalize"
	"netmigration/widcollector/internal/record"
)

// Labels is the portal's detail-page dictionary. Labels mapped to
// record.FieldNone are known and kept in the raw data only.
var Labels = []normalize.Mapping{
	{Label: "SITIO DEL CLIENTE", Field: record.FieldClientSite},
	{Label: "RED LAN CPE - INT", Field: record.FieldLANNetwork},
	{Label: "IP LAN - INT", Field: record.FieldLANIP},
	{Label: "MASCARA DE RED LAN IPV4", Field: record.FieldLANMask},
	{Label: "ANCHO DE BANDA - INT", Field: record.FieldBandwidth},
	{Label: "SW CPE", Field: record.FieldCPEName},
	{Label: "MARCA/MODELO - SW", Field: record.FieldCPEModel},
	{Label: "IP GESTION SW - CPE", Field: record.FieldCPEManagementIP},
	{Label: "VLAN GESTION SW - CPE", Field: record.FieldCPEManagementVLAN},
	{Label: "VLAN INTERFACE - INT", Field: record.FieldCPEInterfaceVLAN},
	{Label: "PUERTO SW CPE - INT", Field: record.FieldCPEPort},
	{Label: "IP WAN CPE - INT", Field: record.FieldCPEWANIP},
	{Label: "AGREGADOR INTERNET", Field: record.FieldAggregatorName},
	{Label: "ANILLO METH", Field: record.FieldRingName},
	{Label: "P1 AGG", Field: record.FieldAggregatorPort1},
	{Label: "P2 AGG", Field: record.FieldAggregatorPort2},
	{Label: "VLAN BVI - INT", Field: record.FieldBVIVLAN},
	{Label: "IP WAN AGGI - INT", Field: record.FieldWANAggIP},
	{Label: "MASCARA DE RED WAN IPV4", Field: record.FieldWANMask},

	normalize.Ignore("TIPO DE ENRUTAMIENTO DEL CLIENTE - INT"),
	normalize.Ignore("NRO. SIST. AUTÓNOMO / AREA - INT"),
	normalize.Ignore("IP PEER / NETWORK - INT"),
	normalize.Ignore("MASCARA IP GESTION SW - CPE"),
	normalize.Ignore("DG GESTION SW - CPE"),
	normalize.Ignore("NODO CLARO B"),
}

var dictionary = normalize.MustNew(Labels)

// Normalizer returns the normalizer built from Labels
func Normalizer() *normalize.Normalizer {
	return dictionary
}
