package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrEnvioYaAceptado = errors.New("el comprobante ya fue aceptado por SUNAT; no se retransmite un documento legal aceptado")
)
