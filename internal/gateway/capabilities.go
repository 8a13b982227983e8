package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
	"golang.org/x/mod/semver"
)

// SupportedAPIVersions lists the gateway API versions this client speaks,
// newest first. The discovery handshake picks the newest version the
// gateway also advertises.
var SupportedAPIVersions = []string{"v1.8", "v1.7", "v1.6"}

// Capabilities describes what the gateway enables for this store. The
// checkout flow is configuration-driven: which states exist depends on
// these flags, not on client code.
type Capabilities struct {
	// APIVersion is the negotiated gateway API version.
	APIVersion string

	// CollectBillingAddress inserts the billing address step into checkout.
	CollectBillingAddress bool
	// AllowDifferentStorePickup enables the pickup-at-another-store flow
	// and its shipping-method skip.
	AllowDifferentStorePickup bool
	// FreeShippingMethodIDs are the methods that compose a zero-price
	// shipping override in ship-to-store flows.
	FreeShippingMethodIDs []string
}

// capabilitiesDocument is the discovery endpoint body.
type capabilitiesDocument struct {
	APIVersions []string `json:"api_versions"`
}

// ParseCapabilitiesHeader extracts feature flags from the gateway's
// Commerce-Capabilities header (RFC 8941 Dictionary).
//
// Example:
//
//	billing-address, different-store-pickup, free-shipping-ids="005;006"
//
// Returns an error if the header is empty or malformed; a missing key means
// the feature is disabled.
func ParseCapabilitiesHeader(header string) (*Capabilities, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.New("empty Commerce-Capabilities header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return nil, fmt.Errorf("invalid Commerce-Capabilities header: %w", err)
	}

	caps := &Capabilities{}
	caps.CollectBillingAddress = boolMember(dict, "billing-address")
	caps.AllowDifferentStorePickup = boolMember(dict, "different-store-pickup")

	if member, ok := dict.Get("free-shipping-ids"); ok {
		if item, ok := member.(httpsfv.Item); ok {
			if s, ok := item.Value.(string); ok && s != "" {
				caps.FreeShippingMethodIDs = strings.Split(s, ";")
			}
		}
	}
	return caps, nil
}

// boolMember reads a dictionary member as a boolean flag.
// A bare key parses as the boolean true per RFC 8941.
func boolMember(dict *httpsfv.Dictionary, key string) bool {
	member, ok := dict.Get(key)
	if !ok {
		return false
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return false
	}
	b, ok := item.Value.(bool)
	return ok && b
}

// PickAPIVersion returns the newest client-supported version the gateway
// also advertises. Versions compare as semver; the gateway's list is not
// assumed sorted.
func PickAPIVersion(advertised []string) (string, error) {
	best := ""
	for _, v := range advertised {
		cv := canonicalVersion(v)
		if cv == "" {
			continue
		}
		for _, s := range SupportedAPIVersions {
			if semver.MajorMinor(cv) != semver.MajorMinor(canonicalVersion(s)) {
				continue
			}
			if best == "" || semver.Compare(cv, canonicalVersion(best)) > 0 {
				best = s
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("no compatible API version: gateway advertises %v, client supports %v",
			advertised, SupportedAPIVersions)
	}
	return best, nil
}

// canonicalVersion normalizes "v1.8" style tags for the semver package,
// which requires a leading v and tolerates missing patch components.
func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// Capabilities fetches the discovery document and capability header from
// the gateway and negotiates the API version.
func (c *Client) Capabilities(ctx context.Context) (*Capabilities, error) {
	respBody, header, err := c.doDiscovery(ctx)
	if err != nil {
		return nil, err
	}

	caps, err := ParseCapabilitiesHeader(header)
	if err != nil {
		// Header absent on older gateways; fall back to config-driven flags.
		caps = &Capabilities{}
	}

	var doc capabilitiesDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("parsing capabilities response: %w", err)
	}
	version, err := PickAPIVersion(doc.APIVersions)
	if err != nil {
		return nil, err
	}
	caps.APIVersion = version
	return caps, nil
}
