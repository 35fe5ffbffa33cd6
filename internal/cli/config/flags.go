package config

import "github.com/spf13/pflag"

// RegisterFlags defines the run flags on fs. Flag names double as config
// keys, except --output which maps to "o".
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolP(KeyAdd, "a", false, "add dependency injection annotations where non-existing")
	fs.BoolP(KeyRemove, "r", false, "remove all existing dependency injection annotations")
	fs.StringP("output", "o", "", "write output to <file>. output is written to stdout by default")
	fs.Bool(KeySourcemap, false, "generate an inline sourcemap")
	fs.String(KeySourceRoot, "", "set the sourceRoot property of the generated sourcemap")
	fs.Bool(KeySingleQuotes, false, "use single quotes (') instead of double quotes (\")")
	fs.String(KeyRegexp, "", "detect short form myMod.controller(...) iff myMod matches regexp")
	fs.String(KeyRename, "", "rename declarations and annotated references\noldname1 newname1 oldname2 newname2 ...")
	fs.StringArray(KeyPlugin, nil, "use plugin with path (repeatable)")
	fs.StringArray(KeyEnable, nil, "enable optional with name (repeatable)")
	fs.Bool(KeyStats, false, "print statistics on stderr")
}
