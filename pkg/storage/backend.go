package storage

// Backend is a bucketed byte key/value store. The spill index keeps its
// key -> offsets lists in one, so the index of a large map phase can live on
// disk instead of in memory. All access goes through transactions.
type Backend interface {
	Update(fn func(tx Transaction) error) error
	View(fn func(tx Transaction) error) error

	Close() error
}

// Transaction provides transactional access to the backend
type Transaction interface {
	CreateBucket(name []byte) error
	Bucket(name []byte) Bucket
}

// Bucket provides access to a single bucket within a transaction.
// Slices passed to Put must not change until the transaction ends, and
// slices returned by Get are only valid for the life of the transaction.
//
// ForEach and ForEachPrefix visit keys in ascending byte order on every
// implementation.
type Bucket interface {
	Put(key, value []byte) error
	Get(key []byte) []byte
	ForEach(fn func(k, v []byte) error) error
	ForEachPrefix(prefix []byte, fn func(k, v []byte) error) error
}
