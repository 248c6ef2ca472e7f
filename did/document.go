package did

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalJSON on MethodRef supports both a bare DID-URL string reference
// and an embedded verification-method object.
func (m *MethodRef) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		m.Reference = ref
		return nil
	}
	var vm VerificationMethod
	if err := json.Unmarshal(data, &vm); err != nil {
		return err
	}
	m.Embedded = &vm
	return nil
}

func (m MethodRef) MarshalJSON() ([]byte, error) {
	if m.Embedded != nil {
		return json.Marshal(m.Embedded)
	}
	return json.Marshal(m.Reference)
}

// Validate checks the document's structural invariants: every usage-set
// URL resolves to a verificationMethod entry or is embedded, every method id
// begins with the document id, and no two methods share a fragment. A
// duplicate fragment is a hard rejection, not a warning, since callers
// resolve methods by fragment and a collision would make that lookup
// ambiguous.
func (d *Document) Validate() error {
	seenFragments := make(map[string]bool, len(d.VerificationMethod))
	byID := make(map[string]*VerificationMethod, len(d.VerificationMethod))
	for i := range d.VerificationMethod {
		vm := &d.VerificationMethod[i]
		if !strings.HasPrefix(vm.ID, string(d.ID)) {
			return newError(CodeDidDocumentInvalid, fmt.Sprintf("did: verification method %q does not begin with document id", vm.ID))
		}
		frag := fragmentOf(vm.ID)
		if frag == "" {
			return newError(CodeDidDocumentInvalid, fmt.Sprintf("did: verification method %q has no fragment", vm.ID))
		}
		if seenFragments[frag] {
			return newError(CodeDidDocumentInvalid, fmt.Sprintf("did: duplicate verification method fragment %q", frag))
		}
		seenFragments[frag] = true
		byID[vm.ID] = vm
	}
	for _, set := range [][]MethodRef{d.Authentication, d.KeyAgreement, d.HumanAuthorization} {
		for _, ref := range set {
			if ref.Embedded != nil {
				continue
			}
			if _, ok := byID[ref.Reference]; !ok {
				return newError(CodeDidDocumentInvalid, fmt.Sprintf("did: usage set references unknown method %q", ref.Reference))
			}
		}
	}
	return nil
}

func fragmentOf(didURL string) string {
	i := strings.IndexByte(didURL, '#')
	if i < 0 {
		return ""
	}
	return didURL[i+1:]
}

// PublicKeyFor walks the document's verificationMethod array for the entry
// identified by a DID URL (full "did#fragment" form or bare "#fragment"),
// returning it and its public-key algorithm type.
func PublicKeyFor(doc *Document, verificationMethodURL string) (*VerificationMethod, error) {
	target := verificationMethodURL
	if strings.HasPrefix(target, "#") {
		target = string(doc.ID) + target
	}
	for i := range doc.VerificationMethod {
		vm := &doc.VerificationMethod[i]
		if vm.ID == target {
			return vm, nil
		}
	}
	return nil, ErrVerificationMethodMissing
}
