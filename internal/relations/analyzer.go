// Package relations infers how the endpoints of an API relate to each other: which
// resources expose CRUD lifecycles and which endpoint pairs are likely called together.
package relations

import (
	"fmt"
	"strings"

	"api-testcase-generator/internal/types"
)

// UntaggedGroup collects endpoints that declare no tags.
const UntaggedGroup = "General"

// MaxSequences caps the number of candidate sequences kept across the whole API.
const MaxSequences = 10

// TagGroups maps each tag to the indices of its endpoints. An endpoint with several tags
// appears under each of them.
type TagGroups struct {
	order   []string
	members map[string][]int
}

// GroupByTag files every endpoint under each of its tags, in first-seen tag order.
func GroupByTag(endpoints []types.Endpoint) *TagGroups {
	groups := &TagGroups{members: make(map[string][]int)}

	for i, ep := range endpoints {
		tags := ep.Tags
		if len(tags) == 0 {
			tags = []string{UntaggedGroup}
		}
		for _, tag := range tags {
			if _, ok := groups.members[tag]; !ok {
				groups.order = append(groups.order, tag)
			}
			groups.members[tag] = append(groups.members[tag], i)
		}
	}

	return groups
}

// Tags returns the group names in first-seen order.
func (g *TagGroups) Tags() []string {
	return append([]string(nil), g.order...)
}

// Members returns the endpoint indices filed under tag.
func (g *TagGroups) Members(tag string) []int {
	return g.members[tag]
}

// Len returns the number of groups.
func (g *TagGroups) Len() int {
	return len(g.order)
}

// CRUDWorkflow represents a tag whose endpoints cover at least two lifecycle operations
type CRUDWorkflow struct {
	Tag          string   `json:"tag"`
	Operations   []string `json:"operations"`
	Paths        []string `json:"paths"`
	WorkflowType string   `json:"workflow_type"`
}

// DetectCRUDWorkflows reports every tag where at least two of create (POST), read (GET),
// update (PUT or PATCH) and delete (DELETE) are present among its endpoints.
func DetectCRUDWorkflows(endpoints []types.Endpoint, groups *TagGroups) []CRUDWorkflow {
	workflows := []CRUDWorkflow{}

	for _, tag := range groups.order {
		var methods, paths []string
		var create, read, update, remove bool

		for _, idx := range groups.members[tag] {
			ep := endpoints[idx]
			methods = append(methods, ep.Method)
			paths = append(paths, ep.Path)

			switch ep.Method {
			case "POST":
				create = true
			case "GET":
				read = true
			case "PUT", "PATCH":
				update = true
			case "DELETE":
				remove = true
			}
		}

		if countTrue(create, read, update, remove) < 2 {
			continue
		}

		workflows = append(workflows, CRUDWorkflow{
			Tag:          tag,
			Operations:   methods,
			Paths:        paths,
			WorkflowType: "CRUD",
		})
	}

	return workflows
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Sequence represents a pair of endpoints on the same resource family that are likely
// exercised one after the other. First precedes Second in the endpoint list.
type Sequence struct {
	First        int    `json:"-"`
	Second       int    `json:"-"`
	Endpoint1    string `json:"endpoint1"`
	Endpoint2    string `json:"endpoint2"`
	Relationship string `json:"relationship"`
	SequenceType string `json:"sequence_type"`
}

// DetectSequences pairs endpoints whose paths share the first segment but whose methods
// differ. Pairs are enumerated with the outer index ascending and the inner index running
// from outer+1, and enumeration stops once MaxSequences pairs are found.
func DetectSequences(endpoints []types.Endpoint) []Sequence {
	sequences := []Sequence{}

	segments := make([][]string, len(endpoints))
	for i, ep := range endpoints {
		segments[i] = strings.Split(ep.Path, "/")
	}

	for i := range endpoints {
		for j := i + 1; j < len(endpoints); j++ {
			if len(sequences) == MaxSequences {
				return sequences
			}

			a, b := segments[i], segments[j]
			if len(a) < 2 || len(b) < 2 {
				continue
			}
			if a[1] != b[1] || endpoints[i].Method == endpoints[j].Method {
				continue
			}

			sequences = append(sequences, Sequence{
				First:        i,
				Second:       j,
				Endpoint1:    endpoints[i].Key(),
				Endpoint2:    endpoints[j].Key(),
				Relationship: "resource_family",
				SequenceType: fmt.Sprintf("%s_then_%s", endpoints[i].Method, endpoints[j].Method),
			})
		}
	}

	return sequences
}

// Analysis bundles the relationship data computed for one endpoint list.
type Analysis struct {
	Groups        *TagGroups     `json:"-"`
	CRUDWorkflows []CRUDWorkflow `json:"crud_workflows"`
	Sequences     []Sequence     `json:"potential_sequences"`

	endpoints []types.Endpoint
}

// Analyze runs tag grouping, CRUD detection and sequence detection over endpoints.
func Analyze(endpoints []types.Endpoint) *Analysis {
	groups := GroupByTag(endpoints)
	return &Analysis{
		Groups:        groups,
		CRUDWorkflows: DetectCRUDWorkflows(endpoints, groups),
		Sequences:     DetectSequences(endpoints),
		endpoints:     endpoints,
	}
}

// Partner returns the other endpoint of the first sequence involving the endpoint at idx.
func (a *Analysis) Partner(idx int) (types.Endpoint, bool) {
	for _, seq := range a.Sequences {
		switch idx {
		case seq.First:
			return a.endpoints[seq.Second], true
		case seq.Second:
			return a.endpoints[seq.First], true
		}
	}
	return types.Endpoint{}, false
}

// CRUDFor returns the first CRUD workflow whose tag is the endpoint's primary tag or
// whose paths contain the endpoint path as a substring.
func (a *Analysis) CRUDFor(ep types.Endpoint, primaryTag string) (CRUDWorkflow, bool) {
	for _, wf := range a.CRUDWorkflows {
		if wf.Tag == primaryTag {
			return wf, true
		}
		for _, path := range wf.Paths {
			if strings.Contains(path, ep.Path) {
				return wf, true
			}
		}
	}
	return CRUDWorkflow{}, false
}

// CrossModuleTags lists, in endpoint order and without repeats, the primary tags of
// tagged endpoints that belong to another module and live on a different path.
func (a *Analysis) CrossModuleTags(idx int, primaryTag string) []string {
	var tags []string
	seen := make(map[string]bool)
	path := a.endpoints[idx].Path

	for _, ep := range a.endpoints {
		if len(ep.Tags) == 0 || ep.Tags[0] == primaryTag || ep.Path == path {
			continue
		}
		if !seen[ep.Tags[0]] {
			seen[ep.Tags[0]] = true
			tags = append(tags, ep.Tags[0])
		}
	}
	return tags
}
