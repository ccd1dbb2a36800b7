// Package models holds the HTTP request and response bodies of the loan API
// and the user facing messages sent with them.
package models

import (
	"fmt"
	"time"
)

type IssueLoanRequest struct {
	Isbn                  string `json:"isbn"`
	IdentificacionUsuario string `json:"identificacionUsuario"`
	TipoUsuario           int    `json:"tipoUsuario"`
}

type IssueLoanResponse struct {
	ID                    string    `json:"id"`
	FechaMaximaDevolucion time.Time `json:"fechaMaximaDevolucion"`
}

type LoanResponse struct {
	ID                    string    `json:"id"`
	Isbn                  string    `json:"isbn"`
	IdentificacionUsuario string    `json:"identificacionUsuario"`
	TipoUsuario           int       `json:"tipoUsuario"`
	FechaMaximaDevolucion time.Time `json:"fechaMaximaDevolucion"`
}

type MessageResponse struct {
	Mensaje string `json:"mensaje"`
}

type StatsResponse struct {
	Prestamos int64 `json:"prestamos"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

const (
	MessageInvalidUserType  = "El valor de 'tipoUsuario' debe ser 1, 2 o 3."
	MessageInvalidRecord    = "Los campos tipoUsuario, isbn o identificacionUsuario contienen valores no permitidos."
	MessageMalformedRequest = "El cuerpo de la solicitud no es un JSON valido."
	MessageTooManyRequests  = "Demasiadas solicitudes, intente de nuevo mas tarde."
	MessageForbidden        = "Acceso denegado."
	MessageInvalidLoanID    = "El identificador del préstamo no es un GUID valido."
)

func MessageAlreadyHasLoan(identification string) string {
	return fmt.Sprintf(
		"El usuario con identificacion %s ya tiene un libro prestado por lo cual no se le puede realizar otro prestamo",
		identification,
	)
}

func MessageInvalidIdentification(identification string) string {
	return fmt.Sprintf("El usuario con nombre %s es invalido, trate de nuevo", identification)
}

func MessageLoanNotFound(id string) string {
	return fmt.Sprintf("El préstamo con ID %s no existe", id)
}

func MessageInternalError(err error) string {
	return fmt.Sprintf("Ha ocurrido un error al procesar la solicitud: %v", err)
}
