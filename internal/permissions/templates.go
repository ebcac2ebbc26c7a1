package permissions

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/USSTM/facility-portal/internal/rbac"
	"gopkg.in/yaml.v3"
)

// Template names
const (
	TemplateAdministrator = "administrator"
	TemplateManager       = "manager"
	TemplateViewer        = "viewer"
	TemplateVendor        = "vendor"
	TemplateColleague     = "colleague"
)

// Template is a named permission set used to seed new sessions.
type Template struct {
	Name        string
	Description string
	Permissions Set
}

// Templates holds the role templates, keyed by template name.
type Templates map[string]Template

var roleTemplates = map[rbac.Role]string{
	rbac.RoleMainAdmin:          TemplateAdministrator,
	rbac.RoleHeadOfFacilities:   TemplateManager,
	rbac.RoleFacilityManager:    TemplateManager,
	rbac.RoleVendorAdmin:        TemplateVendor,
	rbac.RoleVendorStaff:        TemplateVendor,
	rbac.RoleColleagueRequester: TemplateColleague,
}

// DefaultTemplates returns the built-in role templates.
func DefaultTemplates() Templates {
	return Templates{
		TemplateAdministrator: {
			Name:        TemplateAdministrator,
			Description: "Full access to every page and action",
			Permissions: grant(Pages, Actions, "admin-dashboard", "admin-settings", "admin-users"),
		},
		TemplateManager: {
			Name:        TemplateManager,
			Description: "Facility operations without user or settings administration",
			Permissions: grant(
				[]string{PageDashboard, PageAssets, PageMaintenance, PageWorkOrders, PageVendors, PageUtilities, PageFuel, PageWater, PageReports, PageBranches, PageSLA, PageDocuments},
				map[string][]string{
					ModuleAssets:     {"view", "create", "edit", "export"},
					ModuleWorkOrders: {"view", "create", "edit", "assign", "approve"},
					ModuleUtilities:  {"view", "create", "edit"},
					ModuleVendors:    {"view"},
				},
				"admin-dashboard",
			),
		},
		TemplateViewer: {
			Name:        TemplateViewer,
			Description: "Read-only access to operational pages",
			Permissions: grant(
				[]string{PageDashboard, PageAssets, PageMaintenance, PageWorkOrders, PageReports},
				map[string][]string{
					ModuleAssets:     {"view"},
					ModuleWorkOrders: {"view"},
					ModuleUtilities:  {"view"},
				},
			),
		},
		TemplateVendor: {
			Name:        TemplateVendor,
			Description: "Vendor work orders, invoices and timesheets",
			Permissions: grant(
				[]string{PageDashboard, PageWorkOrders, PageInvoices, PageTimesheets, PageDocuments, PageSLA},
				map[string][]string{
					ModuleWorkOrders: {"view", "edit"},
				},
				"vendor-dashboard",
			),
		},
		TemplateColleague: {
			Name:        TemplateColleague,
			Description: "Raise and track maintenance requests",
			Permissions: grant(
				[]string{PageDashboard, PageMaintenance, PageWorkOrders},
				map[string][]string{
					ModuleWorkOrders: {"view", "create"},
				},
				"colleague-dashboard",
			),
		},
	}
}

// ForRole returns the template seeding sessions of the given role. Unknown
// roles get the minimal default set.
func (t Templates) ForRole(role rbac.Role) Template {
	if name, ok := roleTemplates[role]; ok {
		if tmpl, ok := t[name]; ok {
			return tmpl
		}
	}
	return Template{Name: "minimal", Permissions: Default()}
}

type templateFile struct {
	Templates map[string]struct {
		Description string         `yaml:"description"`
		Permissions map[string]any `yaml:"permissions"`
	} `yaml:"templates"`
}

// LoadTemplates reads a YAML overlay of role templates on top of the
// built-in ones. Permissions in the file are normalized like stored ones.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading permission templates: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing permission templates: %w", err)
	}

	for name, def := range file.Templates {
		raw, err := json.Marshal(def.Permissions)
		if err != nil {
			return nil, fmt.Errorf("encoding template %q: %w", name, err)
		}
		templates[name] = Template{
			Name:        name,
			Description: def.Description,
			Permissions: Normalize(raw),
		}
	}

	return templates, nil
}

func grant(pages []string, actions map[string][]string, menu ...string) Set {
	s := Default()
	for _, p := range pages {
		s.Pages[p] = true
	}
	for module, names := range actions {
		for _, a := range names {
			if _, ok := s.Actions[module][a]; ok {
				s.Actions[module][a] = true
			}
		}
	}
	if raw, err := json.Marshal(menu); err == nil {
		s.MenuItems = menuItems(raw)
	}
	return s
}
