package permissions

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Page keys gate whole portal pages.
const (
	PageDashboard      = "dashboard"
	PageAssets         = "assets"
	PageMaintenance    = "maintenance"
	PageWorkOrders     = "workOrders"
	PageVendors        = "vendors"
	PageUtilities      = "utilities"
	PageFuel           = "fuel"
	PageWater          = "water"
	PageReports        = "reports"
	PageUserManagement = "userManagement"
	PageBranches       = "branches"
	PageSLA            = "sla"
	PageTimesheets     = "timesheets"
	PageInvoices       = "invoices"
	PageDocuments      = "documents"
	PageSettings       = "settings"
)

// Pages lists every page key.
var Pages = []string{
	PageDashboard, PageAssets, PageMaintenance, PageWorkOrders, PageVendors,
	PageUtilities, PageFuel, PageWater, PageReports, PageUserManagement,
	PageBranches, PageSLA, PageTimesheets, PageInvoices, PageDocuments,
	PageSettings,
}

// Action modules
const (
	ModuleAssets     = "assets"
	ModuleWorkOrders = "workOrders"
	ModuleUtilities  = "utilities"
	ModuleVendors    = "vendors"
	ModuleUsers      = "users"
)

// Actions maps every action module to its action names.
var Actions = map[string][]string{
	ModuleAssets:     {"view", "create", "edit", "delete", "export"},
	ModuleWorkOrders: {"view", "create", "edit", "delete", "assign", "approve"},
	ModuleUtilities:  {"view", "create", "edit", "delete"},
	ModuleVendors:    {"view", "create", "edit", "delete", "approve"},
	ModuleUsers:      {"view", "create", "edit", "delete", "managePermissions"},
}

// LandingPageDefault is the page every session may see when its stored
// permissions omit it. All other flags default to false.
const LandingPageDefault = PageDashboard

// Set is a normalized permission set: every page and action key is present.
type Set struct {
	Pages             map[string]bool            `json:"pages"`
	Actions           map[string]map[string]bool `json:"actions"`
	MenuItems         []string                   `json:"menuItems"`
	CustomPermissions map[string]bool            `json:"customPermissions,omitempty"`
}

// Default is the minimal-access set used for absent or malformed input.
func Default() Set {
	s := Set{
		Pages:     make(map[string]bool, len(Pages)),
		Actions:   make(map[string]map[string]bool, len(Actions)),
		MenuItems: []string{},
	}
	for _, p := range Pages {
		s.Pages[p] = p == LandingPageDefault
	}
	for module, actions := range Actions {
		m := make(map[string]bool, len(actions))
		for _, a := range actions {
			m[a] = false
		}
		s.Actions[module] = m
	}
	return s
}

// Normalize turns raw stored permissions into the full shape. It never fails:
// anything that is not a JSON object yields Default, and any flag that is
// missing or not a boolean takes its default value.
func Normalize(raw json.RawMessage) Set {
	s := Default()

	var src map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &src) != nil {
		return s
	}

	if pages, ok := object(src["pages"]); ok {
		for _, p := range Pages {
			if v, ok := boolean(pages[p]); ok {
				s.Pages[p] = v
			}
		}
	}

	if actions, ok := object(src["actions"]); ok {
		for module, names := range Actions {
			moduleActions, ok := object(actions[module])
			if !ok {
				continue
			}
			for _, a := range names {
				if v, ok := boolean(moduleActions[a]); ok {
					s.Actions[module][a] = v
				}
			}
		}
	}

	s.MenuItems = menuItems(src["menuItems"])
	s.CustomPermissions = customPermissions(src["customPermissions"])

	return s
}

// JSON encodes the set. Normalize(s.JSON()) equals s for any normalized s.
func (s Set) JSON() json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return b
}

// HasPage reports the page flag; unknown pages are denied.
func (s Set) HasPage(page string) bool {
	return s.Pages[page]
}

// HasAction reports an action flag; unknown modules or actions are denied.
func (s Set) HasAction(module, action string) bool {
	return s.Actions[module][action]
}

func (s Set) HasMenuItem(id string) bool {
	i := sort.SearchStrings(s.MenuItems, id)
	return i < len(s.MenuItems) && s.MenuItems[i] == id
}

// Resolve evaluates a permission string. "dashboard.<page>" reads the page
// map and "action.<module>[.<action>]" the action map; a bare module grants
// when any of its actions does. Anything else is a custom permission.
func (s Set) Resolve(permission string) bool {
	parts := strings.Split(permission, ".")
	switch {
	case len(parts) >= 2 && parts[0] == "dashboard":
		return s.HasPage(parts[1])
	case len(parts) == 2 && parts[0] == "action":
		for _, granted := range s.Actions[parts[1]] {
			if granted {
				return true
			}
		}
		return false
	case len(parts) >= 3 && parts[0] == "action":
		return s.HasAction(parts[1], parts[2])
	}
	return s.CustomPermissions[permission]
}

// PageForPath maps a portal path to its page key: the second segment in
// camelCase, so /admin/user-management resolves to userManagement. Empty
// segments are skipped. Paths whose segment is not a known page report
// ok=false.
func PageForPath(path string) (string, bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return "", false
	}
	key := camelCase(segments[1])
	for _, p := range Pages {
		if p == key {
			return p, true
		}
	}
	return "", false
}

func camelCase(segment string) string {
	words := strings.Split(strings.ToLower(segment), "-")
	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i > 0 {
			b.WriteString(strings.ToUpper(w[:1]))
			b.WriteString(w[1:])
			continue
		}
		b.WriteString(w)
	}
	return b.String()
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if !isObject(raw) {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

func boolean(raw json.RawMessage) (bool, bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func menuItems(raw json.RawMessage) []string {
	items := []string{}
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return items
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		var id string
		if json.Unmarshal(v, &id) != nil || id == "" || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

func customPermissions(raw json.RawMessage) map[string]bool {
	values, ok := object(raw)
	if !ok {
		return nil
	}
	var custom map[string]bool
	for k, v := range values {
		granted, ok := boolean(v)
		if !ok {
			continue
		}
		if custom == nil {
			custom = make(map[string]bool)
		}
		custom[k] = granted
	}
	return custom
}
