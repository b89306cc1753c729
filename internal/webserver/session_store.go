package webserver

import (
	"encoding/base32"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/stylehub/stylehub/internal/domain"
	"gorm.io/gorm"
)

// GormStore is a server side sessions.Store. The cookie carries only a signed
// opaque id; values live in the sys_session table.
type GormStore struct {
	db      *gorm.DB
	Codecs  []securecookie.Codec
	Options *sessions.Options
}

var _ sessions.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, maxAge int, keyPairs ...[]byte) *GormStore {
	s := &GormStore{
		db:     db,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
	s.MaxAge(maxAge)
	return s
}

// MaxAge sets the session lifetime on the store and every codec
func (s *GormStore) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
			sc.MaxLength(0)
		}
	}
}

func (s *GormStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the stored session named by the request cookie, or a fresh one.
// Unknown, tampered or expired ids silently yield a fresh session.
func (s *GormStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	if err := s.load(r, session); err != nil {
		session.ID = ""
		session.Values = make(map[interface{}]interface{})
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

func (s *GormStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.db.WithContext(r.Context()).Where("id = ?", session.ID).Delete(&domain.SysSession{}).Error; err != nil {
				return errors.Wrap(err, "delete session")
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session values")
	}
	now := time.Now()
	row := domain.SysSession{
		ID:        session.ID,
		Data:      data,
		ExpiresAt: now.Add(time.Duration(session.Options.MaxAge) * time.Second),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(r.Context()).Save(&row).Error; err != nil {
		return errors.Wrap(err, "save session")
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session id")
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *GormStore) load(r *http.Request, session *sessions.Session) error {
	var row domain.SysSession
	if err := s.db.WithContext(r.Context()).Where("id = ?", session.ID).First(&row).Error; err != nil {
		return err
	}
	if !row.ExpiresAt.After(time.Now()) {
		return errors.New("session expired")
	}
	return securecookie.DecodeMulti(session.Name(), row.Data, &session.Values, s.Codecs...)
}
