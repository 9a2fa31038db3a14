package manifest

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
	"github.com/GriffinCanCode/bundlekit/internal/shared/utils"
)

// Parser converts manifest documents into records
type Parser struct {
	logger    *zap.Logger
	validator *utils.SizeValidator
}

// NewParser creates a parser with the default document size limit
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		logger:    logger,
		validator: utils.DefaultManifestValidator(),
	}
}

// Parse decodes data in the given format and converts it into a record
func (p *Parser) Parse(data []byte, format Format) (*Record, error) {
	if err := p.validator.ValidateSize(data); err != nil {
		return nil, propertyError("document", ErrPropertySizeExceeded, "%v", err)
	}

	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	root := object{values: doc}
	rec := &Record{}

	app, _, err := root.child("app", true)
	if err != nil {
		return nil, err
	}
	if rec.App, err = convertApp(app); err != nil {
		return nil, err
	}

	mod, _, err := root.child("module", true)
	if err != nil {
		return nil, err
	}
	if err := p.convertModule(mod, rec); err != nil {
		return nil, err
	}

	for _, w := range rec.Warnings {
		p.logger.Warn("Manifest entry dropped",
			zap.String("bundle", rec.App.BundleName),
			zap.String("module", rec.Module.Name),
			zap.Error(w),
		)
	}
	return rec, nil
}

func convertApp(o object) (types.AppInfo, error) {
	var app types.AppInfo
	var err error

	if app.BundleName, err = o.name("bundleName", true); err != nil {
		return app, err
	}
	if !utils.ValidBundleName(app.BundleName) {
		return app, propertyError(o.prop("bundleName"), ErrPropertyTypeMismatch, "malformed bundle name %q", app.BundleName)
	}
	if app.VersionCode, err = o.uint32("versionCode", true); err != nil {
		return app, err
	}
	if app.VersionName, err = o.name("versionName", false); err != nil {
		return app, err
	}
	if app.MinAPIVersion, err = o.uint32("minAPIVersion", false); err != nil {
		return app, err
	}
	if app.TargetAPIVersion, err = o.uint32("targetAPIVersion", false); err != nil {
		return app, err
	}
	if app.MinAPIVersion > 0 && app.TargetAPIVersion > 0 && app.MinAPIVersion > app.TargetAPIVersion {
		return app, propertyError(o.prop("minAPIVersion"), ErrPropertyTypeMismatch,
			"min %d above target %d", app.MinAPIVersion, app.TargetAPIVersion)
	}
	if app.Vendor, err = o.name("vendor", false); err != nil {
		return app, err
	}
	if app.Label, err = o.str("label", false, utils.MaxDescriptionLength); err != nil {
		return app, err
	}
	if app.Icon, err = o.str("icon", false, utils.MaxDescriptionLength); err != nil {
		return app, err
	}
	if app.Certificate, err = o.str("certificate", false, 0); err != nil {
		return app, err
	}
	if app.AppIdentifier, err = o.name("appIdentifier", false); err != nil {
		return app, err
	}
	return app, nil
}

func (p *Parser) convertModule(o object, rec *Record) error {
	m := &rec.Module
	var err error

	if m.Name, err = o.name("name", true); err != nil {
		return err
	}
	if !utils.ValidModuleName(m.Name) {
		return propertyError(o.prop("name"), ErrPropertyTypeMismatch, "malformed module name %q", m.Name)
	}
	typ, err := o.name("type", false)
	if err != nil {
		return err
	}
	m.Type = types.ModuleType(typ)
	if m.Type == "" {
		m.Type = types.ModuleTypeFeature
	}
	if !m.Type.Valid() {
		return propertyError(o.prop("type"), ErrPropertyTypeMismatch, "unknown module type %q", typ)
	}
	if m.SrcEntrance, err = o.str("srcEntrance", false, utils.MaxDescriptionLength); err != nil {
		return err
	}
	if m.Description, err = o.str("description", false, utils.MaxDescriptionLength); err != nil {
		return err
	}
	if m.MainElement, err = o.name("mainElement", false); err != nil {
		return err
	}
	if m.LibIsolation, err = o.boolean("libIsolation", false); err != nil {
		return err
	}
	if m.Dependencies, err = convertDependencies(o); err != nil {
		return err
	}
	if m.RequestPermissions, err = convertRequestPermissions(o); err != nil {
		return err
	}
	if m.DefinePermissions, err = convertDefinePermissions(o); err != nil {
		return err
	}
	if m.Metadata, err = convertMetadata(o); err != nil {
		return err
	}
	if m.RouterMap, err = convertRouterMap(o, rec); err != nil {
		return err
	}

	abilities, err := o.objects("abilities")
	if err != nil {
		return err
	}
	extensions, err := o.objects("extensionAbilities")
	if err != nil {
		return err
	}
	if len(abilities)+len(extensions) > utils.MaxListLength {
		return propertyError(o.prop("abilities"), ErrPropertySizeExceeded,
			"%d components exceeds %d", len(abilities)+len(extensions), utils.MaxListLength)
	}

	for _, ao := range abilities {
		if err := convertComponent(ao, m.Name, types.KindAbility, rec); err != nil {
			return err
		}
	}
	for _, eo := range extensions {
		if err := convertComponent(eo, m.Name, types.KindExtension, rec); err != nil {
			return err
		}
	}
	return nil
}

func convertDependencies(o object) ([]types.Dependency, error) {
	items, err := o.objects("dependencies")
	if err != nil {
		return nil, err
	}
	out := make([]types.Dependency, 0, len(items))
	for _, item := range items {
		var d types.Dependency
		if d.Module, err = item.name("moduleName", true); err != nil {
			return nil, err
		}
		if d.Bundle, err = item.name("bundleName", false); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func convertRequestPermissions(o object) ([]types.RequestPermission, error) {
	items, err := o.objects("requestPermissions")
	if err != nil {
		return nil, err
	}
	out := make([]types.RequestPermission, 0, len(items))
	for _, item := range items {
		var rp types.RequestPermission
		if rp.Name, err = item.name("name", true); err != nil {
			return nil, err
		}
		if rp.Reason, err = item.str("reason", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}
		scene, ok, err := item.child("usedScene", false)
		if err != nil {
			return nil, err
		}
		if ok {
			if rp.UsedScene, err = scene.name("when", false); err != nil {
				return nil, err
			}
		}
		out = append(out, rp)
	}
	return out, nil
}

func convertDefinePermissions(o object) ([]types.DefinePermission, error) {
	items, err := o.objects("definePermissions")
	if err != nil {
		return nil, err
	}
	out := make([]types.DefinePermission, 0, len(items))
	for _, item := range items {
		var dp types.DefinePermission
		if dp.Name, err = item.name("name", true); err != nil {
			return nil, err
		}
		if dp.GrantMode, err = item.name("grantMode", false); err != nil {
			return nil, err
		}
		if dp.AvailableLevel, err = item.name("availableLevel", false); err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, nil
}

func convertMetadata(o object) ([]types.Metadata, error) {
	items, err := o.objects("metadata")
	if err != nil {
		return nil, err
	}
	out := make([]types.Metadata, 0, len(items))
	for _, item := range items {
		var md types.Metadata
		if md.Name, err = item.name("name", false); err != nil {
			return nil, err
		}
		if md.Value, err = item.str("value", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}
		if md.Resource, err = item.str("resource", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	return out, nil
}

// convertRouterMap reads the embedded route table. Entries whose data object
// holds a non-string value are dropped and recorded as warnings.
func convertRouterMap(o object, rec *Record) ([]types.RouteEntry, error) {
	items, err := o.objects("routerMap")
	if err != nil {
		return nil, err
	}
	out := make([]types.RouteEntry, 0, len(items))
	for _, item := range items {
		var r types.RouteEntry
		if r.Name, err = item.name("name", true); err != nil {
			return nil, err
		}
		if r.PageSourceFile, err = item.str("pageSourceFile", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}
		if r.BuildFunction, err = item.name("buildFunction", false); err != nil {
			return nil, err
		}
		if r.CustomData, err = item.str("customData", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}
		if r.OhmURL, err = item.str("ohmurl", false, utils.MaxDescriptionLength); err != nil {
			return nil, err
		}

		data, ok, err := item.child("data", false)
		if err != nil {
			return nil, err
		}
		if ok {
			r.Data = make(map[string]string, len(data.values))
			malformed := false
			for k, v := range data.values {
				s, isString := v.(string)
				if !isString {
					rec.Warnings = append(rec.Warnings, propertyError(data.prop(k), ErrMalformedRouteData,
						"route %q dropped: expected string, got %T", r.Name, v))
					malformed = true
					break
				}
				r.Data[k] = s
			}
			if malformed {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func convertComponent(o object, module string, kind types.ComponentKind, rec *Record) error {
	ab := types.AbilityEntry{Module: module, Kind: kind}
	var err error

	if ab.Name, err = o.name("name", true); err != nil {
		return err
	}
	if !utils.ValidModuleName(ab.Name) {
		return propertyError(o.prop("name"), ErrPropertyTypeMismatch, "malformed component name %q", ab.Name)
	}
	if ab.SrcEntrance, err = o.str("srcEntrance", false, utils.MaxDescriptionLength); err != nil {
		return err
	}
	if ab.Description, err = o.str("description", false, utils.MaxDescriptionLength); err != nil {
		return err
	}

	// exported is the current spelling, visible the legacy one
	if ab.Visible, err = o.boolean("visible", false); err != nil {
		return err
	}
	if ab.Visible, err = o.boolean("exported", ab.Visible); err != nil {
		return err
	}

	if kind == types.KindExtension {
		if ab.ExtensionType, err = o.name("type", false); err != nil {
			return err
		}
	} else {
		token, err := o.name("launchType", false)
		if err != nil {
			return err
		}
		lt, ok := types.ParseLaunchType(token)
		if !ok {
			return propertyError(o.prop("launchType"), ErrPropertyTypeMismatch, "unknown launch type %q", token)
		}
		ab.LaunchType = lt
		if ab.Window, err = convertWindow(o); err != nil {
			return err
		}
	}

	if ab.Permissions, err = o.strings("permissions"); err != nil {
		return err
	}
	if ab.Metadata, err = convertMetadata(o); err != nil {
		return err
	}

	skills, err := o.objects("skills")
	if err != nil {
		return err
	}
	for _, item := range skills {
		s, err := convertSkill(item, ab.Key())
		if err != nil {
			return err
		}
		rec.Skills = append(rec.Skills, s)
	}

	rec.Abilities = append(rec.Abilities, ab)
	return nil
}

func convertWindow(o object) (types.WindowConstraints, error) {
	var w types.WindowConstraints
	var err error

	if w.Modes, err = o.strings("supportWindowMode"); err != nil {
		return w, err
	}
	if w.MinWidth, err = o.uint32("minWindowWidth", false); err != nil {
		return w, err
	}
	if w.MaxWidth, err = o.uint32("maxWindowWidth", false); err != nil {
		return w, err
	}
	if w.MinHeight, err = o.uint32("minWindowHeight", false); err != nil {
		return w, err
	}
	if w.MaxHeight, err = o.uint32("maxWindowHeight", false); err != nil {
		return w, err
	}
	if w.MaxWidth > 0 && w.MinWidth > w.MaxWidth {
		return w, propertyError(o.prop("minWindowWidth"), ErrPropertyTypeMismatch, "min %d above max %d", w.MinWidth, w.MaxWidth)
	}
	if w.MaxHeight > 0 && w.MinHeight > w.MaxHeight {
		return w, propertyError(o.prop("minWindowHeight"), ErrPropertyTypeMismatch, "min %d above max %d", w.MinHeight, w.MaxHeight)
	}
	return w, nil
}

// convertSkill converts one skills[] entry. Each entry stays a separate
// declaration owned by the component key.
func convertSkill(o object, key types.AbilityKey) (types.Skill, error) {
	s := types.Skill{Key: key}
	var err error

	if s.Actions, err = o.strings("actions"); err != nil {
		return s, err
	}
	if s.Entities, err = o.strings("entities"); err != nil {
		return s, err
	}
	uris, err := o.objects("uris")
	if err != nil {
		return s, err
	}
	for _, uo := range uris {
		u, err := convertURI(uo)
		if err != nil {
			return s, err
		}
		s.URIs = append(s.URIs, u)
	}
	return s, nil
}

func convertURI(o object) (types.SkillURI, error) {
	var u types.SkillURI
	var err error

	if u.Scheme, err = o.name("scheme", false); err != nil {
		return u, err
	}
	if u.Host, err = o.str("host", false, utils.MaxDescriptionLength); err != nil {
		return u, err
	}
	if u.Port, err = o.scalar("port"); err != nil {
		return u, err
	}
	if u.Path, err = o.str("path", false, utils.MaxDescriptionLength); err != nil {
		return u, err
	}
	if u.PathStartWith, err = o.str("pathStartWith", false, utils.MaxDescriptionLength); err != nil {
		return u, err
	}
	if u.PathRegex, err = o.str("pathRegex", false, utils.MaxDescriptionLength); err != nil {
		return u, err
	}
	if u.Type, err = o.name("type", false); err != nil {
		return u, err
	}
	return u, nil
}
