package cpe

// Firmador es el puerto de salida hacia el servicio de firma digital.
// El pipeline no implementa XAdES: entrega el XML sin firmar y recibe el XML
// con el nodo ds:Signature inyectado en el ExtensionContent reservado.
type Firmador interface {
	// Firmar recibe el XML UBL sin firma y devuelve el XML firmado.
	Firmar(xml []byte) ([]byte, error)
}

// FirmadorNoOp devuelve el XML sin modificar. Solo para entornos locales donde
// la firma la aplica un servicio externo aguas abajo; nunca usar contra el
// ambiente de producción.
type FirmadorNoOp struct{}

// Firmar implementa Firmador sin alterar el documento.
func (FirmadorNoOp) Firmar(xml []byte) ([]byte, error) { return xml, nil }
