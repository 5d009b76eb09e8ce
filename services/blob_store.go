package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidBlobRef   = errors.New("invalid blob reference")
	ErrBlobNotFound     = errors.New("blob not found")
	ErrInvalidBlobToken = errors.New("invalid or expired blob token")
)

const blobAudience = "blob"

// BlobStore файловое хранилище изображений с временными подписанными ссылками
type BlobStore struct {
	dir       string
	publicURL string
	key       []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewBlobStore создает хранилище в каталоге dir. Ссылки подписываются ключом,
// производным от secret, и действуют ttl.
func NewBlobStore(dir, publicURL, secret string, ttl time.Duration) *BlobStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BlobStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		key:       []byte(secret + ":" + blobAudience),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Put сохраняет содержимое r и возвращает новую ссылку вида images/<uuid><ext>
func (s *BlobStore) Put(ctx context.Context, filename string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	ref := path.Join("images", uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	full := s.fullPath(ref)

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", 0, fmt.Errorf("create blob directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return ref, n, nil
}

// ResolveURL возвращает временную ссылку для загрузки по ref
func (s *BlobStore) ResolveURL(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanRef(ref)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(s.fullPath(clean)); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrBlobNotFound, clean)
		}
		return "", err
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   clean,
		Audience:  jwt.ClaimStrings{blobAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", err
	}
	return s.publicURL + "/files/" + token, nil
}

// Open проверяет токен ссылки и возвращает путь к файлу и ссылку
func (s *BlobStore) Open(token string) (string, string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithAudience(blobAudience), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidBlobToken
	}

	ref, err := cleanRef(claims.Subject)
	if err != nil {
		return "", "", ErrInvalidBlobToken
	}
	full := s.fullPath(ref)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("%w: %s", ErrBlobNotFound, ref)
		}
		return "", "", err
	}
	return full, ref, nil
}

// Delete удаляет файл по ссылке
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanRef(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(s.fullPath(clean)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, clean)
		}
		return err
	}
	return nil
}

func (s *BlobStore) fullPath(ref string) string {
	return filepath.Join(s.dir, filepath.FromSlash(ref))
}

func cleanRef(ref string) (string, error) {
	if ref == "" || strings.Contains(ref, `\`) || path.IsAbs(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobRef, ref)
	}
	clean := path.Clean(ref)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobRef, ref)
	}
	return clean, nil
}
