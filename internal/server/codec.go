package server

import "encoding/json"

// Codec carries AgentService messages as JSON so engines in any language can
// speak the protocol without generated stubs.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return "json" }
