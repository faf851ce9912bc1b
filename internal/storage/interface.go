package storage

// ArchiveInterface defines the contract for the report HTML archive. The
// hosted table store keeps the authoritative copy; the archive is a durable
// secondary so large report documents survive table-store retention limits.
type ArchiveInterface interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
