package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/msgrelayer/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
	// typeMark is appended to unquoted vars so the toml parser accepts them
	typeMark = ":int"
)

var (
	ErrCycleVars                 = fmt.Errorf("cycle vars")
	ErrMissingVars               = fmt.Errorf("missing vars")
	ErrUnsupportedConfigFileType = fmt.Errorf("unsupported config file type")

	// A={{B}}
	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	// A="{{B:int}}"
	quotedTypedVarRe = regexp.MustCompile(`=\s*\"\{\{([^}:]+` + typeMark + `)\}\}\"`)
	// {{B:int}}
	typedVarRe = regexp.MustCompile(`\{\{([^}:]+` + typeMark + `)\}\}`)
)

type FileData struct {
	Name    string
	Content string
}

// Renderer merges TOML files and resolves the {{vars}} inside them.
// A var is resolved from the environment (EnvPrefix_<var>) or from
// any key of the merged files.
type Renderer struct {
	// Files are merged in order, a key on a file overrides the previous ones
	Files []FileData
	// LookupEnv resolves environment variables, typically os.LookupEnv
	LookupEnv func(key string) (string, bool)
	EnvPrefix string
}

func NewRenderer(files []FileData, envPrefix string) *Renderer {
	return &Renderer{
		Files:     files,
		LookupEnv: os.LookupEnv,
		EnvPrefix: envPrefix,
	}
}

// Render merges all files and then resolves the vars
func (r *Renderer) Render() (string, error) {
	merged, err := r.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return r.ResolveVars(merged)
}

func (r *Renderer) Merge() (string, error) {
	k := koanf.New(".")
	for _, file := range r.Files {
		content := markUnquotedVars(file.Content)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v. Content: %v", file.Name, err, content)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", file.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return RemoveQuotesForVars(string(marshaled)), nil
}

func (r *Renderer) ResolveVars(data string) (string, error) {
	tpl, values, err := r.parseTemplate(data)
	if err != nil {
		return "", err
	}
	// vars with no value keep the template form
	rendered := RemoveTypeMarks(r.executeTemplate(tpl, values))
	if unresolved := r.unresolvedVars(tpl, values); len(unresolved) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", unresolved, ErrMissingVars)
	}
	// a var whose value is another var needs more passes, e.g. A={{B}} B={{C}}.
	// If a pass doesn't reduce the pending vars there is a cycle: A={{B}} B={{A}}
	resolved, err := r.resolvePending(rendered)
	if err != nil {
		return data, err
	}
	return resolved, nil
}

func (r *Renderer) resolvePending(partial string) (string, error) {
	current := RemoveQuotesForVars(partial)
	pending := r.Vars(current)
	if len(pending) == 0 {
		return partial, nil
	}
	log.Debugf("pending vars: %v", pending)
	for len(pending) > 0 {
		previous := pending
		tpl, values, err := r.parseTemplate(current)
		if err != nil {
			return "", fmt.Errorf("fails to read template on pending vars. Err: %w", err)
		}
		current = RemoveTypeMarks(RemoveQuotesForVars(r.executeTemplate(tpl, values)))
		pending = r.Vars(current)
		if len(pending) == len(previous) {
			return partial, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return current, nil
}

// parseTemplate returns data as a template and its keys. Vars in data
// must be unquoted: A={{B}}, not A="{{B}}"
func (r *Renderer) parseTemplate(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err:%w", err)
	}
	content := markUnquotedVars(data)
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing template. Content: %s. Err: %w", content, err)
	}
	return tpl, k.All(), nil
}

// markUnquotedVars turns A={{B}} into A="{{B:int}}" so it's valid TOML
func markUnquotedVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}`+typeMark+`}}"`)
}

// RemoveQuotesForVars reverts markUnquotedVars: A="{{B:int}}" into A={{B}}
func RemoveQuotesForVars(data string) string {
	return quotedTypedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedTypedVarRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return "= " + startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
		}
		return match
	})
}

// RemoveTypeMarks turns {{B:int}} into {{B}}
func RemoveTypeMarks(data string) string {
	return typedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := typedVarRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
		}
		return match
	})
}

func (r *Renderer) executeTemplate(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := r.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

// unresolvedVars returns the vars of tpl that are neither env vars nor keys of values
func (r *Renderer) unresolvedVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var unresolved []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if _, ok := r.lookupEnv(tag); ok {
			return 0, nil
		}
		if _, ok := values[tag]; !ok && !contains(unresolved, tag) {
			unresolved = append(unresolved, tag)
		}
		return 0, nil
	})
	return unresolved
}

// Vars returns every var occurrence in data
func (r *Renderer) Vars(data string) []string {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

func (r *Renderer) lookupEnv(tag string) (string, bool) {
	return r.LookupEnv(r.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
