package store

// Observer receives a notification for every load and save
type Observer interface {
	ObserveStoreOp(collection, operation string, err error)
}

// InstrumentedStore wraps a Store and reports every operation to an
// observer.
type InstrumentedStore struct {
	inner    Store
	observer Observer
}

// NewInstrumentedStore wraps s so every operation is observed
func NewInstrumentedStore(s Store, observer Observer) *InstrumentedStore {
	return &InstrumentedStore{inner: s, observer: observer}
}

// Load reads a collection through the wrapped store
func (s *InstrumentedStore) Load(collection string, out interface{}) error {
	err := s.inner.Load(collection, out)
	s.observer.ObserveStoreOp(collection, "load", err)
	return err
}

// Save writes a collection through the wrapped store
func (s *InstrumentedStore) Save(collection string, records interface{}) error {
	err := s.inner.Save(collection, records)
	s.observer.ObserveStoreOp(collection, "save", err)
	return err
}
