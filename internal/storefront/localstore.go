package storefront

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bucketName  = []byte("storefront")
	cartKey     = []byte("cart")
	wishlistKey = []byte("wishlist")
)

// CartItem is one cart line
type CartItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// LocalStore keeps the shopper's cart and wishlist on the local disk.
// Nothing is mirrored to the server.
type LocalStore struct {
	db *bolt.DB
}

// OpenLocalStore opens or creates the store file at path
func OpenLocalStore(path string) (*LocalStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open local store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init local store")
	}
	return &LocalStore{db: db}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

// AddToCart adds one of the product, bumping the quantity if already present
func (s *LocalStore) AddToCart(productID int64) ([]CartItem, error) {
	var cart []CartItem
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := load(b, cartKey, &cart); err != nil {
			return err
		}
		found := false
		for i := range cart {
			if cart[i].ProductID == productID {
				cart[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			cart = append(cart, CartItem{ProductID: productID, Quantity: 1})
		}
		return store(b, cartKey, cart)
	})
	return cart, errors.Wrap(err, "add to cart")
}

// Cart returns the cart lines in insertion order
func (s *LocalStore) Cart() ([]CartItem, error) {
	var cart []CartItem
	err := s.db.View(func(tx *bolt.Tx) error {
		return load(tx.Bucket(bucketName), cartKey, &cart)
	})
	return cart, errors.Wrap(err, "read cart")
}

// CartCount is the total quantity across all lines
func (s *LocalStore) CartCount() (int, error) {
	cart, err := s.Cart()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range cart {
		n += item.Quantity
	}
	return n, nil
}

// AddToWishlist reports true when the product was not yet on the wishlist
func (s *LocalStore) AddToWishlist(productID int64) (bool, error) {
	added := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		var ids []int64
		if err := load(b, wishlistKey, &ids); err != nil {
			return err
		}
		for _, id := range ids {
			if id == productID {
				return nil
			}
		}
		added = true
		return store(b, wishlistKey, append(ids, productID))
	})
	return added, errors.Wrap(err, "add to wishlist")
}

// Wishlist returns the wished product ids in insertion order
func (s *LocalStore) Wishlist() ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return load(tx.Bucket(bucketName), wishlistKey, &ids)
	})
	return ids, errors.Wrap(err, "read wishlist")
}

func load(b *bolt.Bucket, key []byte, out interface{}) error {
	data := b.Get(key)
	if data == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func store(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
