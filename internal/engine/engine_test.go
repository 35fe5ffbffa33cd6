package engine

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sod/ng-annotate-patched/internal/testutil"
)

func strPtr(s string) *string { return &s }

type fakePlugin struct {
	methods map[string]bool
	err     error
}

func (p *fakePlugin) Name() string { return "fake" }

func (p *fakePlugin) Match(method string) (bool, error) {
	return p.methods[method], p.err
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name string
		src  string
		cfg  Config
		want string
	}{
		{
			name: "add controller",
			src:  `angular.module("m").controller("C", function($scope){})`,
			cfg:  Config{Add: true},
			want: `angular.module("m").controller("C", ["$scope", function($scope){}])`,
		},
		{
			name: "add multiple params",
			src:  `angular.module("m").service("s", function($http, $q) { return 1; });`,
			cfg:  Config{Add: true},
			want: `angular.module("m").service("s", ["$http", "$q", function($http, $q) { return 1; }]);`,
		},
		{
			name: "add chained registrations",
			src:  `angular.module("m").filter("f", function(a){}).directive("d", function(b){});`,
			cfg:  Config{Add: true},
			want: `angular.module("m").filter("f", ["a", function(a){}]).directive("d", ["b", function(b){}]);`,
		},
		{
			name: "add config and run",
			src:  `angular.module("m").config(function($routeProvider){}).run(function($rootScope){});`,
			cfg:  Config{Add: true},
			want: `angular.module("m").config(["$routeProvider", function($routeProvider){}]).run(["$rootScope", function($rootScope){}]);`,
		},
		{
			name: "add with single quotes",
			src:  `angular.module('m').factory('f', function($http){})`,
			cfg:  Config{Add: true, SingleQuotes: true},
			want: `angular.module('m').factory('f', ['$http', function($http){}])`,
		},
		{
			name: "add leaves zero params alone",
			src:  `angular.module("m").controller("C", function(){})`,
			cfg:  Config{Add: true},
			want: `angular.module("m").controller("C", function(){})`,
		},
		{
			name: "add leaves existing annotation alone",
			src:  `angular.module("m").controller("C", ["$x", function($scope){}])`,
			cfg:  Config{Add: true},
			want: `angular.module("m").controller("C", ["$x", function($scope){}])`,
		},
		{
			name: "remove annotation",
			src:  `angular.module("m").controller("C", ["$scope", "$http", function($scope, $http){}]);`,
			cfg:  Config{Remove: true},
			want: `angular.module("m").controller("C", function($scope, $http){});`,
		},
		{
			name: "rebuild annotation",
			src:  `angular.module("m").controller("C", ["$x", function($scope){}])`,
			cfg:  Config{Add: true, Remove: true},
			want: `angular.module("m").controller("C", ["$scope", function($scope){}])`,
		},
		{
			name: "unknown receiver untouched",
			src:  `myMod.controller("C", function($scope){})`,
			cfg:  Config{Add: true},
			want: `myMod.controller("C", function($scope){})`,
		},
		{
			name: "short form with regexp",
			src:  `myMod.controller("C", function($scope){})`,
			cfg:  Config{Add: true, Regexp: "^myMod$"},
			want: `myMod.controller("C", ["$scope", function($scope){}])`,
		},
		{
			name: "strings and comments untouched",
			src: "// angular.module(\"m\").controller(\"C\", function(a){})\n" +
				`var s = 'angular.module("m").controller("C", function(a){})';`,
			cfg: Config{Add: true},
			want: "// angular.module(\"m\").controller(\"C\", function(a){})\n" +
				`var s = 'angular.module("m").controller("C", function(a){})';`,
		},
		{
			name: "rename annotated references",
			src:  `angular.module("m").service("old", function($scope){})`,
			cfg: Config{Add: true, Rename: []RenameRule{
				{From: "$scope", To: strPtr("$s")},
				{From: "old", To: strPtr("new")},
			}},
			want: `angular.module("m").service("new", ["$s", function($scope){}])`,
		},
		{
			name: "rename existing annotation strings",
			src:  `angular.module("m").controller("C", ["a", function(a){}])`,
			cfg:  Config{Add: true, Rename: []RenameRule{{From: "a", To: strPtr("b")}}},
			want: `angular.module("m").controller("C", ["b", function(a){}])`,
		},
		{
			name: "optional bare inject",
			src:  `inject(function($rootScope){});`,
			cfg:  Config{Add: true, Enable: []string{"ngmock-inject"}},
			want: `inject(["$rootScope", function($rootScope){}]);`,
		},
		{
			name: "optional disabled",
			src:  `inject(function($rootScope){});`,
			cfg:  Config{Add: true},
			want: `inject(function($rootScope){});`,
		},
		{
			name: "empty input",
			src:  "",
			cfg:  Config{Add: true, Remove: true},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(testutil.NewTestLogger(t))
			res := e.Transform(tt.src, &tt.cfg)
			require.False(t, res.HasErrors(), "errors: %v", res.Errors)
			require.NotNil(t, res.Src)
			assert.Equal(t, tt.want, *res.Src)
		})
	}
}

func TestTransform_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		cfg       Config
		errSubstr string
	}{
		{
			name:      "unknown optional",
			cfg:       Config{Add: true, Enable: []string{"nope"}},
			errSubstr: "found no optional named nope",
		},
		{
			name:      "rename without replacement",
			cfg:       Config{Add: true, Rename: []RenameRule{{From: "a"}}},
			errSubstr: `rename "a" is missing a replacement name`,
		},
		{
			name:      "invalid regexp",
			cfg:       Config{Add: true, Regexp: "("},
			errSubstr: "invalid regexp",
		},
		{
			name:      "parse error",
			src:       `angular.module("m").controller("C", function($scope){`,
			cfg:       Config{Add: true},
			errSubstr: "couldn't process source due to parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(nil).Transform(tt.src, &tt.cfg)
			require.True(t, res.HasErrors())
			assert.Nil(t, res.Src)
			assert.Contains(t, strings.Join(res.Errors, "\n"), tt.errSubstr)
		})
	}
}

func TestTransform_List(t *testing.T) {
	res := New(nil).Transform("", &Config{List: true})
	require.False(t, res.HasErrors())
	assert.Equal(t, []string{"angular-dashboard-framework", "ngmock-inject"}, res.List)
	assert.Nil(t, res.Src)
}

func TestTransform_Plugins(t *testing.T) {
	src := `angular.module("m").widget("w", function(dashboard){})`

	t.Run("plugin match", func(t *testing.T) {
		cfg := &Config{Add: true, Plugins: []Plugin{&fakePlugin{methods: map[string]bool{"widget": true}}}}
		res := New(nil).Transform(src, cfg)
		require.False(t, res.HasErrors(), "errors: %v", res.Errors)
		assert.Equal(t, `angular.module("m").widget("w", ["dashboard", function(dashboard){}])`, *res.Src)
	})

	t.Run("plugin error", func(t *testing.T) {
		cfg := &Config{Add: true, Plugins: []Plugin{&fakePlugin{err: errors.New("boom")}}}
		res := New(nil).Transform(src, cfg)
		require.True(t, res.HasErrors())
		assert.Contains(t, res.Errors[0], "boom")
	})
}

func TestTransform_Stats(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	e := New(nil, WithClock(clock))
	res := e.Transform(`angular.module("m")`, &Config{Add: true, Stats: true})
	require.NotNil(t, res.Stats)
	assert.Equal(t, time.Millisecond, res.Stats.ParserRequireEnd.Sub(res.Stats.ParserRequireStart))
	assert.Equal(t, time.Millisecond, res.Stats.ParserParseEnd.Sub(res.Stats.ParserParseStart))

	res = e.Transform(`angular.module("m")`, &Config{Add: true})
	assert.Nil(t, res.Stats)
}

func TestTransform_SourceMap(t *testing.T) {
	src := "angular.module(\"m\")\n  .controller(\"C\", function($scope){});\n"
	cfg := &Config{Add: true, Map: &SourceMapConfig{Inline: true, SourceRoot: "/src", InFile: "app.js"}}

	res := New(nil).Transform(src, cfg)
	require.False(t, res.HasErrors())

	out := *res.Src
	const marker = "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"
	idx := strings.Index(out, marker)
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, strings.HasPrefix(out, "angular.module(\"m\")\n  .controller(\"C\", [\"$scope\", function($scope){}]);\n"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out[idx+len(marker):]))
	require.NoError(t, err)

	var m sourceMap
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, "/src", m.SourceRoot)
	assert.Equal(t, []string{"app.js"}, m.Sources)
	assert.Equal(t, []string{src}, m.SourcesContent)
	assert.Equal(t, "AAAA;AACA;AACA", m.Mappings)
}

func decodeSourceMap(t *testing.T, out string) sourceMap {
	t.Helper()
	const marker = "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"
	idx := strings.Index(out, marker)
	require.GreaterOrEqual(t, idx, 0)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out[idx+len(marker):]))
	require.NoError(t, err)

	var m sourceMap
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestTransform_SourceMapFollowsRemovedLines(t *testing.T) {
	src := "angular.module(\"m\").controller(\"C\", [\n" +
		"  \"$scope\",\n" +
		"  \"$http\",\n" +
		"  function($scope, $http) {}\n" +
		"]);\n" +
		"x();\n"
	cfg := &Config{Remove: true, Map: &SourceMapConfig{Inline: true}}

	res := New(nil).Transform(src, cfg)
	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	out := *res.Src
	assert.True(t, strings.HasPrefix(out,
		"angular.module(\"m\").controller(\"C\", function($scope, $http) {});\nx();\n"))

	m := decodeSourceMap(t, out)
	// output lines 0, 1, 2 start on source lines 0, 5, 6
	assert.Equal(t, "AAAA;AAKA;AACA", m.Mappings)
	assert.Equal(t, []string{"stdin"}, m.Sources)
}

func TestWriteVLQ(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 0, want: "A"},
		{n: 1, want: "C"},
		{n: -1, want: "D"},
		{n: 5, want: "K"},
		{n: 15, want: "e"},
		{n: 16, want: "gB"},
		{n: -16, want: "hB"},
	}

	for _, tt := range tests {
		var b strings.Builder
		writeVLQ(&b, tt.n)
		assert.Equal(t, tt.want, b.String(), "n=%d", tt.n)
	}
}

func TestTransform_RegexpAfterBlock(t *testing.T) {
	src := `if (x) {} /"/.test(s); angular.module("m").controller("C", function($scope){})`

	res := New(nil).Transform(src, &Config{Add: true})
	require.False(t, res.HasErrors(), "errors: %v", res.Errors)
	assert.Equal(t,
		`if (x) {} /"/.test(s); angular.module("m").controller("C", ["$scope", function($scope){}])`,
		*res.Src)
}
