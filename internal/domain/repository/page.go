package repository

// Page paginación opcional. Limit 0 devuelve todos los registros.
type Page struct {
	Limit  int
	Offset int
}
