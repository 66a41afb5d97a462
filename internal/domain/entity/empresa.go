package entity

// Empresa datos fijos del emisor. Se cargan una sola vez al arranque desde la
// configuración y se tratan como inmutables durante la vida del proceso.
type Empresa struct {
	RUC          string // 11 dígitos
	RazonSocial  string
	Direccion    string
	Departamento string
	Provincia    string
	Distrito     string
	Ubigeo       string // puede venir vacío; el builder aplica un default
}
