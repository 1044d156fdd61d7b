// Package plugin defines the component model for vagrant plugins: the
// closed set of component kinds, the capability interfaces each kind
// satisfies, the factory registry, and instance specialization.
package plugin

import "strings"

// ComponentKind identifies a plugin category. Kinds are compared by value.
type ComponentKind int

const (
	// InvalidKind is the zero value and matches no component.
	InvalidKind ComponentKind = iota
	// CommandKind components implement CLI-facing tasks.
	CommandKind
	// HostKind components detect and describe the host platform.
	HostKind
	// ProviderKind components manage target resources.
	ProviderKind
	// MapperKind components contribute argument conversion functions.
	MapperKind
)

// kindNames maps kinds to their stable string form.
var kindNames = map[ComponentKind]string{
	InvalidKind:  "invalid",
	CommandKind:  "command",
	HostKind:     "host",
	ProviderKind: "provider",
	MapperKind:   "mapper",
}

// String returns the stable name of the kind.
func (k ComponentKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds returns all valid component kinds in declaration order.
func Kinds() []ComponentKind {
	return []ComponentKind{CommandKind, HostKind, ProviderKind, MapperKind}
}

// CommandNameRoot normalizes a command name to its root token: everything
// before the first whitespace. Factory lookup is keyed by the root token;
// the remainder is subcommand routing handled by the plugin itself.
func CommandNameRoot(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Command is the capability set for CommandKind components. The returned
// values are functions invoked through the dynamic invoker, which supplies
// their declared inputs.
type Command interface {
	// CommandInfoFunc returns a function producing the component's command
	// tree as a *CommandInfo.
	CommandInfoFunc() interface{}
	// ExecuteFunc returns a function executing the command, producing an
	// int64 exit code.
	ExecuteFunc() interface{}
}

// Host is the capability set for HostKind components.
type Host interface {
	// DetectFunc returns a function reporting whether this host component
	// matches the running platform, producing a bool.
	DetectFunc() interface{}
}

// Provider is the capability set for ProviderKind components.
type Provider interface {
	// UsableFunc returns a function reporting whether the provider can be
	// used on this system, producing a bool.
	UsableFunc() interface{}
}

// Mapper is the capability set for MapperKind components.
type Mapper interface {
	// MapperFuncs returns conversion functions merged into the owning
	// scope's mapper list.
	MapperFuncs() []interface{}
}

// FlagKind describes the value shape of a command flag.
type FlagKind int

const (
	// FlagString flags carry a string value.
	FlagString FlagKind = iota
	// FlagBool flags are value-less toggles.
	FlagBool
)

// FlagInfo describes a single command flag.
type FlagInfo struct {
	// LongName is the flag's long form, without leading dashes.
	LongName string
	// ShortName is the optional single-letter form.
	ShortName string
	// Description is shown in help output.
	Description string
	// DefaultValue is the rendered default.
	DefaultValue string
	// Kind is the flag value shape.
	Kind FlagKind
}

// CommandInfo describes a command and its subcommand tree.
type CommandInfo struct {
	// Name is the command's own name, a single token.
	Name string
	// Synopsis is the one-line description.
	Synopsis string
	// Help is the full help text.
	Help string
	// Flags are the command's flags.
	Flags []*FlagInfo
	// Subcommands are the nested commands, if any.
	Subcommands []*CommandInfo
}

// CommandArgs carries the raw CLI words handed to a command's execute
// function. It exists as a named type so the dynamic invoker can route it.
type CommandArgs struct {
	// Args are the command words after the command name itself.
	Args []string
}

// ArgsToMap translates CLI words of the form key=value into a key/value
// map. Words without '=' map to an empty value. This is the built-in
// CLI-argument mapper seeded into every scope's mapper list.
func ArgsToMap(args *CommandArgs) map[string]string {
	result := make(map[string]string, len(args.Args))
	for _, raw := range args.Args {
		if k, v, ok := strings.Cut(raw, "="); ok {
			result[k] = v
			continue
		}
		result[raw] = ""
	}
	return result
}
