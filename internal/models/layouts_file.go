package models

// LayoutsFile is the on-disk form of a layouts table.
//
//	layouts:
//	  - name: sent-bdp
//	    event: SENT
//	    fields:
//	      - {name: time, index: 0}
//	      - {name: packet_count, index: 7}
//	flavors:
//	  vegas: sent-bdp
type LayoutsFile struct {
	Layouts []Layout          `json:"layouts" yaml:"layouts"`
	Flavors map[string]string `json:"flavors,omitempty" yaml:"flavors,omitempty"`
}
