package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Mask replaces redacted parameter values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.DescriptorStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks URL parameters whose key
// matches one of the patterns before they reach the store. Masked values are
// not recoverable: Load returns the masked descriptor.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DescriptorStore) ports.DescriptorStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, d domain.Descriptor) error {
	// Deep copy so the caller's descriptor keeps the real values.
	masked := d.Clone()
	masked.URLParams = deepCopyMap(d.URLParams)
	maskMap(masked.URLParams, m.patterns)
	return m.next.Save(ctx, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, uniqueID string) (domain.Descriptor, error) {
	return m.next.Load(ctx, uniqueID)
}

func (m *piiMiddleware) Delete(ctx context.Context, uniqueID string) error {
	return m.next.Delete(ctx, uniqueID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && m[k] != Mask {
			maskMap(sub, patterns)
		}
	}
}
