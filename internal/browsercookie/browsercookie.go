// Package browsercookie imports the claude.ai sessionKey cookie from local browser
// profiles so it does not have to be copied by hand.
package browsercookie

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all"
	"pkt.systems/pslog"
)

const (
	CookieDomain = "claude.ai"
	CookieName   = "sessionKey"
)

var ErrNotFound = errors.New("no claude.ai sessionKey cookie found in local browsers")

// Candidate is one sessionKey cookie found in a browser store.
type Candidate struct {
	Value   string
	Domain  string
	Expires time.Time
}

type Finder struct {
	read func(ctx context.Context) ([]Candidate, error)
}

func New() *Finder {
	return &Finder{read: readBrowserStores}
}

// SessionKey returns the freshest non-empty sessionKey cookie. A zero expiry counts as
// a session cookie and ranks below any cookie with an explicit expiry.
func (f *Finder) SessionKey(ctx context.Context) (string, error) {
	candidates, err := f.read(ctx)
	if len(candidates) == 0 {
		if err != nil {
			return "", errors.Join(ErrNotFound, err)
		}
		return "", ErrNotFound
	}
	if err != nil {
		pslog.Ctx(ctx).Debug("some cookie stores could not be read", "err", err)
	}

	var best *Candidate
	for i := range candidates {
		c := &candidates[i]
		if strings.TrimSpace(c.Value) == "" {
			continue
		}
		if best == nil || c.Expires.After(best.Expires) {
			best = c
		}
	}
	if best == nil {
		return "", ErrNotFound
	}
	pslog.Ctx(ctx).Info("session cookie found", "domain", best.Domain, "expires", best.Expires)
	return strings.TrimSpace(best.Value), nil
}

func readBrowserStores(ctx context.Context) ([]Candidate, error) {
	cookies, err := kooky.ReadCookies(ctx,
		kooky.Valid,
		kooky.DomainHasSuffix(CookieDomain),
		kooky.Name(CookieName),
	)
	out := make([]Candidate, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		out = append(out, Candidate{Value: c.Value, Domain: c.Domain, Expires: c.Expires})
	}
	return out, err
}
