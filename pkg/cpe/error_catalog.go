package cpe

// ErrorSUNAT describe un código numérico devuelto por el servicio de
// recepción de SUNAT (fault SOAP o ResponseCode del CDR) y su política de
// reintento. Reintentable = falla del sistema SUNAT que puede resolverse sola;
// no reintentable = rechazo definitivo que exige corregir y reenviar como un
// intento nuevo.
type ErrorSUNAT struct {
	Codigo       string
	Descripcion  string
	Reintentable bool
}

// catalogoErrores códigos canónicos del servicio de recepción SUNAT.
// Fuente: anexo 8 de la resolución CPE (códigos de retorno del servicio web).
var catalogoErrores = map[string]ErrorSUNAT{
	// ── Errores de sistema (reintentables) ────────────────────────────────
	"0100": {"0100", "El sistema no puede responder su solicitud. Intente nuevamente o comuníquese con su Administrador", true},
	"0109": {"0109", "El sistema no puede responder su solicitud. (El servicio de autenticación no está disponible)", true},
	"0111": {"0111", "El sistema no puede responder su solicitud. (No se pudo obtener la información del RUC)", true},
	"0112": {"0112", "El usuario debe ser secundario", false},
	"0138": {"0138", "El sistema no puede responder su solicitud. (Error en Base de Datos)", true},

	// ── Errores de seguridad / credenciales (terminales, de configuración) ─
	"0101": {"0101", "El encabezado de seguridad es incorrecto", false},
	"0102": {"0102", "Usuario o contraseña incorrectos", false},
	"0103": {"0103", "El usuario ingresado no existe", false},
	"0104": {"0104", "La clave ingresada es incorrecta", false},
	"0105": {"0105", "El usuario no está activo", false},
	"0106": {"0106", "El usuario no es válido", false},

	// ── Errores de consulta de ticket ─────────────────────────────────────
	"0130": {"0130", "El sistema no puede responder su solicitud. (No se pudo obtener el ticket de proceso)", true},
	"0131": {"0131", "El ticket no existe", false},
	"0132": {"0132", "El ticket no corresponde al contribuyente que lo envió", false},
	"0133": {"0133", "El ticket de proceso ya fue consultado en su oportunidad", false},

	// ── Errores de archivo / empaquetado (terminales) ─────────────────────
	"0151": {"0151", "El nombre del archivo ZIP es incorrecto", false},
	"0152": {"0152", "No se puede enviar por este método un archivo de resumen", false},
	"0154": {"0154", "El RUC del archivo no corresponde al RUC del usuario o el proveedor no está autorizado a enviar este archivo", false},
	"0155": {"0155", "El archivo ZIP no contiene comprobantes", false},
	"0156": {"0156", "El archivo ZIP está corrupto", false},
	"0157": {"0157", "El archivo ZIP no contiene un XML", false},
	"0160": {"0160", "El archivo XML está vacío", false},
	"0161": {"0161", "El nombre del archivo XML es incorrecto", false},

	// ── Errores de validación estructural del XML (terminales) ────────────
	"0301": {"0301", "Elemento raíz del XML no es válido para el tipo de comprobante", false},
	"0306": {"0306", "No se puede leer (parsear) el archivo XML", false},
	"2800": {"2800", "El dato ingresado en el tipo de documento de identidad del adquirente no es válido", false},
	"2801": {"2801", "El XML no contiene el atributo o no existe información del número de documento de identidad del adquirente", false},

	// ── Rechazos de negocio (terminales) ──────────────────────────────────
	"1032": {"1032", "El comprobante fue informado anteriormente en un resumen", false},
	"1033": {"1033", "El comprobante fue registrado previamente con otros datos", false},
	"2010": {"2010", "El contribuyente no está activo en el RUC", false},
	"2011": {"2011", "El contribuyente no está autorizado a emitir comprobantes electrónicos", false},
	"2022": {"2022", "La numeración del comprobante no cumple con el formato serie-correlativo establecido", false},
	"2242": {"2242", "La firma digital del comprobante no es válida o el certificado está vencido", false},
	"2335": {"2335", "El documento electrónico ingresado ha sido alterado o ya fue presentado", false},
	"3034": {"3034", "El monto total del comprobante no coincide con la suma de los valores de venta más los tributos", false},
}

// BuscarError resuelve un código de error SUNAT. El segundo valor indica si el
// código existe en el catálogo.
func BuscarError(codigo string) (ErrorSUNAT, bool) {
	e, ok := catalogoErrores[codigo]
	return e, ok
}

// EsReintentable indica si un código de error corresponde a una falla
// transitoria del sistema SUNAT. Códigos desconocidos no se reintentan: se
// dejan para revisión manual antes que insistir a ciegas contra el servicio.
func EsReintentable(codigo string) bool {
	e, ok := catalogoErrores[codigo]
	return ok && e.Reintentable
}

// DescripcionError devuelve la descripción oficial del código, o un texto
// genérico si el código no figura en el catálogo.
func DescripcionError(codigo string) string {
	if e, ok := catalogoErrores[codigo]; ok {
		return e.Descripcion
	}
	return "Código de retorno SUNAT no catalogado: " + codigo
}
