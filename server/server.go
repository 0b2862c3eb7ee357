// Package server implements the zero-knowledge paste host: CRUD over
// opaque ciphertext blobs addressed by short codes. The server never sees
// plaintext, keys, or passwords; everything it stores is already sealed by
// the client.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omgupl/omgupl/expire"
	"github.com/omgupl/omgupl/storage"
)

// APIPrefix is the path prefix for the paste API, shared with clients.
const APIPrefix = "/api"

// shortCodeAttempts bounds the search for an unused short code. With a
// 32^12 code space, exhausting this means something is very wrong.
const shortCodeAttempts = 1000

// Server handles paste uploads, downloads and deletes over HTTP.
type Server struct {
	mux   *http.ServeMux
	store *storage.Store
	cfg   Config
	log   *logrus.Logger

	now func() time.Time
}

// New wires a server to its store. The configuration is fixed for the
// server's lifetime.
func New(store *storage.Store, cfg Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		mux:   http.NewServeMux(),
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /{$}", s.handleUpload)
	s.mux.HandleFunc("GET "+APIPrefix+"/{code}", s.handleDownload)
	s.mux.HandleFunc("DELETE "+APIPrefix+"/{code}", s.handleDelete)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxPasteBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty paste", http.StatusBadRequest)
		return
	}

	exp, err := s.requestedExpiration(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code, err := s.freshShortCode()
	if err != nil {
		s.log.WithError(err).Error("Failed to generate a free short code")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := s.store.Put(code, body, exp); err != nil {
		s.log.WithError(err).Error("Failed to store paste")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if deadline, ok := exp.Deadline(); ok {
		s.scheduleDeletion(code, deadline)
	}

	s.log.WithFields(logrus.Fields{
		"code":  string(code),
		"bytes": len(body),
	}).Info("Stored paste")

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(code)
}

// requestedExpiration reads the Burn-After header, applies the default,
// caps deadlines at the configured maximum, and pins a deadline onto
// burn-after-reading pastes so unread ones still die.
func (s *Server) requestedExpiration(r *http.Request) (expire.Expiration, error) {
	now := s.now().UTC()
	exp := expire.Expiration{Kind: expire.UnixTime, Time: now.Add(s.cfg.MaxPasteAge)}

	if v := r.Header.Get(expire.HeaderName); v != "" {
		parsed, err := expire.ParseHeaderValue(v)
		if err != nil {
			return expire.Expiration{}, fmt.Errorf("bad %s header", expire.HeaderName)
		}
		exp = parsed
	}

	switch exp.Kind {
	case expire.UnixTime:
		if exp.Time.Sub(now) > s.cfg.MaxPasteAge {
			return expire.Expiration{}, fmt.Errorf("expiration exceeds the maximum paste age")
		}
	case expire.BurnAfterReading:
		exp = expire.Expiration{Kind: expire.BurnAfterReadingWithDeadline, Time: now.Add(s.cfg.MaxPasteAge)}
	}
	return exp, nil
}

func (s *Server) freshShortCode() ([]byte, error) {
	for i := 0; i < shortCodeAttempts; i++ {
		code, err := GenerateShortCode()
		if err != nil {
			return nil, err
		}
		taken, err := s.store.Exists(code)
		if err != nil {
			return nil, err
		}
		if !taken {
			return code, nil
		}
	}
	return nil, fmt.Errorf("no free short code after %d attempts", shortCodeAttempts)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if err := ValidateShortCode(code); err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	exp, err := s.store.GetExpiration([]byte(code))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to read paste metadata")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if exp.Expired(s.now().UTC()) {
		s.deletePaste([]byte(code), "expired")
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	blob, err := s.store.Get([]byte(code))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to read paste")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if exp.Burns() {
		s.deletePaste([]byte(code), "burn after reading")
	}

	w.Header().Set("Expires", exp.HeaderValue())
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(blob)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if err := ValidateShortCode(code); err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if err := s.store.Delete([]byte(code)); err != nil {
		s.log.WithError(err).Error("Failed to delete paste")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deletePaste(code []byte, reason string) {
	if err := s.store.Delete(code); err != nil {
		s.log.WithError(err).WithField("code", string(code)).Warn("Failed to delete paste")
		return
	}
	s.log.WithFields(logrus.Fields{
		"code":   string(code),
		"reason": reason,
	}).Info("Deleted paste")
}

// scheduleDeletion arms a timer that removes the paste at its deadline.
// Deletion is idempotent, so racing a burn-after-read delete is harmless.
func (s *Server) scheduleDeletion(code []byte, deadline time.Time) {
	owned := append([]byte{}, code...)
	wait := time.Until(deadline)
	if wait < 0 {
		wait = 0
	}
	time.AfterFunc(wait, func() {
		s.deletePaste(owned, "deadline reached")
	})
}

// SweepExpirations walks all stored metadata at startup: corrupted records
// and passed deadlines are deleted immediately, everything else gets its
// deletion timer re-armed. Burn-after-reading pastes that somehow lack a
// deadline are given the maximum age.
func (s *Server) SweepExpirations() error {
	var corrupted, expired, pending int
	now := s.now().UTC()

	s.log.Info("Setting up cleanup timers, please wait...")

	err := s.store.ForEachExpiration(func(code []byte, exp expire.Expiration, corrupt bool) {
		if corrupt {
			corrupted++
			s.deletePaste(code, "corrupted metadata")
			return
		}

		deadline, ok := exp.Deadline()
		if !ok {
			s.log.WithField("code", string(code)).Warn("Found unbounded burn after reading. Defaulting to max age")
			deadline = now.Add(s.cfg.MaxPasteAge)
		}

		if !deadline.After(now) {
			expired++
			s.deletePaste(code, "expired")
			return
		}

		pending++
		s.scheduleDeletion(code, deadline)
	})
	if err != nil {
		return err
	}

	if corrupted == 0 {
		s.log.Info("No corrupted pastes found.")
	} else {
		s.log.WithField("count", corrupted).Warn("Found corrupted pastes.")
	}
	s.log.WithField("count", expired).Info("Found expired pastes.")
	s.log.WithField("count", pending).Info("Found active pastes.")
	s.log.Info("Cleanup timers have been initialized.")
	return nil
}

// LogActivePasteCount reports the live paste count. Wired to SIGUSR1 by
// the server binary.
func (s *Server) LogActivePasteCount() {
	n, err := s.store.Count()
	if err != nil {
		s.log.WithError(err).Error("Failed to count pastes")
		return
	}
	s.log.WithField("count", n).Info("Active paste count")
}
