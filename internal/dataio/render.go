package dataio

// RenderTarget describes a rasterised-export request (PNG/PDF) in typed
// form only. Actual rasterisation is a host/UI concern and out of scope
// here (rendering is an explicit Non-goal); this type exists so a host
// renderer has a stable contract to consume.
type RenderTarget struct {
	Format      string // "png" or "pdf"
	Scale       float64
	Background  string
	PageSize    string // A4, Letter, Legal, A3 (PDF only)
	Landscape   bool
	FitToPage   bool
}
