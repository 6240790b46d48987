package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrCodeSpaceExhausted все попытки сгенерировать уникальный код исчерпаны
var ErrCodeSpaceExhausted = errors.New("booking code space exhausted")

var errCodeCollision = errors.New("booking code collision")

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeChecker проверка занятости кода в хранилище бронирований
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator чеканит уникальные коды бронирований вида
// PREFIX-YYYYMMDD-XXXX. Коллизия перегенерирует код; число попыток
// ограничено, чтобы цикл не мог зависнуть.
type CodeGenerator struct {
	prefix   string
	bookings CodeChecker
}

func NewCodeGenerator(prefix string, bookings CodeChecker) *CodeGenerator {
	return &CodeGenerator{prefix: prefix, bookings: bookings}
}

// Generate возвращает свободный код либо ErrCodeSpaceExhausted
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	var code string

	backoff := retry.WithMaxRetries(4, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := g.mint(time.Now().UTC())
		if err != nil {
			return err
		}

		exists, err := g.bookings.CodeExists(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			return retry.RetryableError(errCodeCollision)
		}

		code = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, errCodeCollision) {
			return "", ErrCodeSpaceExhausted
		}
		return "", fmt.Errorf("generate booking code: %w", err)
	}

	return code, nil
}

func (g *CodeGenerator) mint(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
	}
	return fmt.Sprintf("%s-%s-%s", g.prefix, now.Format("20060102"), string(buf)), nil
}
