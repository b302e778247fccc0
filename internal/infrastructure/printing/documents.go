package printing

import (
	"context"
	"time"
)

// ResolucionData fills the transfer resolution template
type ResolucionData struct {
	OrganizationName string
	ResolutionNumber string
	CaseNumber       string
	CaseType         string
	GraveLocation    string
	PreviousHolder   string
	NewHolder        string
	IssuedAt         time.Time
}

// TituloData fills the funeral-right title template
type TituloData struct {
	OrganizationName string
	HolderName       string
	HolderDniNif     string
	GraveLocation    string
	ContractType     string
	FechaInicio      time.Time
	FechaFin         time.Time
	Duplicate        bool
	IssuedAt         time.Time
}

// OrdenTrabajoData fills the work-order template
type OrdenTrabajoData struct {
	OrganizationName string
	ExpedienteNumero string
	ExpedienteTipo   string
	GraveLocation    string
	Descripcion      string
	IssuedAt         time.Time
}

// ReciboLine is one collected ticket on a receipt
type ReciboLine struct {
	Anio      int
	Importe   string
	Descuento string
}

// ReciboData fills the payment receipt template
type ReciboData struct {
	OrganizationName string
	ReceiptNumber    string
	InvoiceNumber    string
	GraveLocation    string
	HolderName       string
	Lines            []ReciboLine
	Total            string
	Method           string
	PaidAt           time.Time
}

// RenderResolucion produces the signed resolution PDF for an approved case
func (r *Renderer) RenderResolucion(ctx context.Context, data ResolucionData) ([]byte, error) {
	return r.Render(ctx, "resolucion.html", data)
}

// RenderTitulo produces the funeral-right title PDF
func (r *Renderer) RenderTitulo(ctx context.Context, data TituloData) ([]byte, error) {
	return r.Render(ctx, "titulo.html", data)
}

// RenderOrdenTrabajo produces the printable work order
func (r *Renderer) RenderOrdenTrabajo(ctx context.Context, data OrdenTrabajoData) ([]byte, error) {
	return r.Render(ctx, "orden_trabajo.html", data)
}

// RenderRecibo produces the payment receipt PDF
func (r *Renderer) RenderRecibo(ctx context.Context, data ReciboData) ([]byte, error) {
	return r.Render(ctx, "recibo.html", data)
}
