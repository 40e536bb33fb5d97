package storage

import (
	"bytes"
	"errors"
	"testing"
)

// backendTestSuite runs the same checks against any Backend implementation
func backendTestSuite(t *testing.T, newBackend func() (Backend, func(), error)) {
	t.Helper()

	open := func(t *testing.T, buckets ...string) Backend {
		t.Helper()

		backend, cleanup, err := newBackend()
		if err != nil {
			t.Fatalf("failed to create backend: %v", err)
		}
		t.Cleanup(cleanup)

		err = backend.Update(func(tx Transaction) error {
			for _, name := range buckets {
				if err := tx.CreateBucket([]byte(name)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("CreateBucket failed: %v", err)
		}

		return backend
	}

	put := func(t *testing.T, backend Backend, bucket string, keys ...string) {
		t.Helper()

		err := backend.Update(func(tx Transaction) error {
			b := tx.Bucket([]byte(bucket))
			for _, k := range keys {
				if err := b.Put([]byte(k), []byte(k+k)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	t.Run("CreateBucketIdempotent", func(t *testing.T) {
		backend := open(t, "offsets")
		put(t, backend, "offsets", "k")

		err := backend.Update(func(tx Transaction) error {
			return tx.CreateBucket([]byte("offsets"))
		})
		if err != nil {
			t.Errorf("CreateBucket should be idempotent: %v", err)
		}

		backend.View(func(tx Transaction) error {
			if got := tx.Bucket([]byte("offsets")).Get([]byte("k")); string(got) != "kk" {
				t.Errorf("CreateBucket on an existing bucket lost data, Get = %q", got)
			}
			return nil
		})
	})

	t.Run("PutAndGet", func(t *testing.T) {
		backend := open(t, "offsets")

		err := backend.Update(func(tx Transaction) error {
			return tx.Bucket([]byte("offsets")).Put([]byte("cell-17"), []byte{1, 2, 3})
		})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		backend.View(func(tx Transaction) error {
			b := tx.Bucket([]byte("offsets"))
			if got := b.Get([]byte("cell-17")); !bytes.Equal(got, []byte{1, 2, 3}) {
				t.Errorf("Get returned %v, want [1 2 3]", got)
			}
			if got := b.Get([]byte("missing")); got != nil {
				t.Errorf("Get should return nil for a missing key, got %v", got)
			}
			return nil
		})
	})

	t.Run("MissingBucket", func(t *testing.T) {
		backend := open(t)

		backend.View(func(tx Transaction) error {
			if tx.Bucket([]byte("nope")) != nil {
				t.Error("missing bucket should be nil")
			}
			return nil
		})
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		backend := open(t, "offsets")

		err := backend.View(func(tx Transaction) error {
			return tx.Bucket([]byte("offsets")).Put([]byte("k"), []byte("v"))
		})
		if err == nil {
			t.Error("Put inside View should fail")
		}
	})

	t.Run("UpdateReturnsError", func(t *testing.T) {
		backend := open(t, "offsets")

		stop := errors.New("stop")
		err := backend.Update(func(tx Transaction) error { return stop })
		if !errors.Is(err, stop) {
			t.Errorf("Update error = %v, want %v", err, stop)
		}
	})

	t.Run("ForEachSorted", func(t *testing.T) {
		backend := open(t, "order")
		put(t, backend, "order", "c", "a", "d", "b")

		var keys []string
		err := backend.View(func(tx Transaction) error {
			return tx.Bucket([]byte("order")).ForEach(func(k, v []byte) error {
				if string(v) != string(k)+string(k) {
					t.Errorf("value for %s = %s", k, v)
				}
				keys = append(keys, string(k))
				return nil
			})
		})
		if err != nil {
			t.Fatalf("ForEach failed: %v", err)
		}

		assertKeys(t, keys, []string{"a", "b", "c", "d"})
	})

	t.Run("ForEachPrefix", func(t *testing.T) {
		backend := open(t, "offsets")
		put(t, backend, "offsets", "\x00\x02b", "\x00\x01z", "\x00\x01a", "\x00", "\x01\x01", "\x00\x01")

		var keys []string
		err := backend.View(func(tx Transaction) error {
			return tx.Bucket([]byte("offsets")).ForEachPrefix([]byte("\x00\x01"), func(k, v []byte) error {
				keys = append(keys, string(k))
				return nil
			})
		})
		if err != nil {
			t.Fatalf("ForEachPrefix failed: %v", err)
		}

		assertKeys(t, keys, []string{"\x00\x01", "\x00\x01a", "\x00\x01z"})
	})

	t.Run("ForEachStopsOnError", func(t *testing.T) {
		backend := open(t, "order")
		put(t, backend, "order", "a", "b")

		stop := errors.New("stop")
		visits := 0
		err := backend.View(func(tx Transaction) error {
			return tx.Bucket([]byte("order")).ForEach(func(k, v []byte) error {
				visits++
				return stop
			})
		})
		if !errors.Is(err, stop) {
			t.Errorf("ForEach error = %v, want %v", err, stop)
		}
		if visits != 1 {
			t.Errorf("ForEach visited %d keys after error, want 1", visits)
		}
	})
}

func assertKeys(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("visited %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit order = %q, want %q", got, want)
			break
		}
	}
}
