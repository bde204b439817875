package crypto

import (
	"bytes"
	"encoding/json"
)

// CanonicalJSON re-encodes a JSON document into its canonical form:
// object keys sorted, no insignificant whitespace. The signer and the
// verifier must both run payloads through this function - the signature
// only matches when the bytes are reproduced identically.
//
// Numbers are decoded with json.Number so their literal text survives the
// round trip (1.0 stays "1.0" rather than collapsing to "1").
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// encoding/json writes map keys in sorted order, which is exactly the
	// canonical form required here.
	return json.Marshal(v)
}
