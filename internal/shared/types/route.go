package types

// RouteEntry is a named navigation target contributed by a module
type RouteEntry struct {
	Name           string            `json:"name"`
	PageSourceFile string            `json:"page_source_file"`
	BuildFunction  string            `json:"build_function"`
	Data           map[string]string `json:"data,omitempty"`
	CustomData     string            `json:"custom_data,omitempty"`
	OhmURL         string            `json:"ohmurl,omitempty"`
	Bundle         string            `json:"bundle"`
	Module         string            `json:"module"`
}

// Clone returns a deep copy of the route entry
func (r *RouteEntry) Clone() RouteEntry {
	out := *r
	if r.Data != nil {
		out.Data = make(map[string]string, len(r.Data))
		for k, v := range r.Data {
			out.Data[k] = v
		}
	}
	return out
}
