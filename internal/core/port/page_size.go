package port

// PageSizePort supplies the site-wide default page size.
type PageSizePort interface {
	DefaultPerPage() int
}
