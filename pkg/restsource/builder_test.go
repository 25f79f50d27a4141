package restsource

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHost = "https://api.example.com"

func newTestBuilder() Builder {
	return NewBuilder(Config{Host: testHost, Format: "json"})
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	t.Run("plain action", func(t *testing.T) {
		t.Parallel()
		for _, action := range []string{"search", "recent", "by-owner"} {
			req, err := b.BuildQuery("widgets", "get", []any{action})
			require.NoError(t, err)
			assert.Equal(t, VerbGet, req.Verb)
			assert.Equal(t, testHost+"/widgets/"+action, req.URL)
			assert.Nil(t, req.Body)
		}
	})

	t.Run("map argument", func(t *testing.T) {
		t.Parallel()
		req, err := b.BuildQuery("widgets", "POST", []any{map[string]any{"action": "import"}, map[string]any{"n": 1}})
		require.NoError(t, err)
		assert.Equal(t, VerbPost, req.Verb)
		assert.Equal(t, testHost+"/widgets/import", req.URL)
		assert.Equal(t, map[string]any{"n": 1}, req.Body)
	})

	t.Run("any string keyed map", func(t *testing.T) {
		t.Parallel()
		var ordered Fields
		ordered.Set("action", "export")
		for want, args := range map[string][]any{
			"/widgets/search": {map[string]string{"action": "search"}},
			"/widgets/7":      {map[string]int{"action": 7}},
			"/widgets/export": {&ordered},
		} {
			req, err := b.BuildQuery("widgets", "get", args)
			require.NoError(t, err)
			assert.Equal(t, testHost+want, req.URL)
		}
	})

	t.Run("body ignored for get and delete", func(t *testing.T) {
		t.Parallel()
		for _, method := range []string{"get", "delete"} {
			req, err := b.BuildQuery("widgets", method, []any{"purge", map[string]any{"n": 1}})
			require.NoError(t, err)
			assert.Nil(t, req.Body, method)
		}
	})

	t.Run("empty args", func(t *testing.T) {
		t.Parallel()
		_, err := b.BuildQuery("widgets", "get", nil)
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Contains(t, err.Error(), "missing request information")
	})

	t.Run("missing action", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]any{
			{map[string]any{"foo": "bar"}},
			{map[string]string{"foo": "bar"}},
			{map[string]any{"action": ""}},
			{(*Fields)(nil)},
			{""},
		} {
			_, err := b.BuildQuery("widgets", "get", args)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), "missing action")
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		t.Parallel()
		_, err := b.BuildQuery("widgets", "patch", []any{"x"})
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestBuildCreate(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	record, err := Combine([]string{"id", "name"}, []any{nil, "x"})
	require.NoError(t, err)

	req := b.BuildCreate("R", record, false)
	assert.Equal(t, VerbPost, req.Verb)
	assert.Equal(t, testHost+"/R", req.URL)
	assert.Equal(t, record, req.Body)

	req = b.BuildCreate("R", record, true)
	assert.Equal(t, VerbPut, req.Verb)
	assert.Equal(t, testHost+"/R/", req.URL)

	withID, err := Combine([]string{"id", "name"}, []any{42, "x"})
	require.NoError(t, err)
	for _, exists := range []bool{false, true} {
		req = b.BuildCreate("R", withID, exists)
		assert.Equal(t, VerbPut, req.Verb)
		assert.Equal(t, testHost+"/R/42", req.URL)
	}

	raw, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"id":42,"name":"x"}`, string(raw))
}

func TestBuildReadIDBecomesPathSegment(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	var conds Fields
	conds.Set("id", 7)
	req := b.BuildRead("widgets", QueryData{Conditions: conds})

	assert.Equal(t, VerbGet, req.Verb)
	assert.Equal(t, testHost+"/widgets/7.json", req.URL)
	assert.True(t, conds.Has("id"), "caller conditions must not be mutated")
}

func TestBuildReadPromotesPaging(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	var conds Fields
	conds.Set("status", "open")
	conds.Set("limit", 99)
	req := b.BuildRead("widgets", QueryData{Conditions: conds, Limit: 10, Page: 2, Offset: 0})

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/widgets.json", u.Path)

	q := u.Query()
	assert.Equal(t, []string{"open"}, q["status"])
	assert.Equal(t, []string{"10"}, q["limit"])
	assert.Equal(t, []string{"2"}, q["page"])
	assert.NotContains(t, q, "offset")
	assert.Equal(t, "status=open&limit=10&page=2", u.RawQuery)

	v, _ := conds.Get("limit")
	assert.Equal(t, 99, v)
}

func TestBuildReadActionAndDelimiters(t *testing.T) {
	t.Parallel()
	b := NewBuilder(Config{Host: testHost + "/", Format: ".yaml"})

	var conds Fields
	conds.Set("id", "abc")
	req := b.BuildRead("/widgets/", QueryData{Action: "archived", Conditions: conds, Order: "name"})

	assert.Equal(t, testHost+"/widgets/archived/abc.yaml?order=name", req.URL)
	assert.NotContains(t, strings.TrimPrefix(req.URL, "https://"), "//")
}

func TestBuildReadKeepsEmptyID(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	var nilID Fields
	nilID.Set("id", nil)
	assert.Equal(t, testHost+"/widgets.json", b.BuildRead("widgets", QueryData{Conditions: nilID}).URL)

	var zeroID Fields
	zeroID.Set("id", 0)
	assert.Equal(t, testHost+"/widgets.json?id=0", b.BuildRead("widgets", QueryData{Conditions: zeroID}).URL)
}

func TestBuildReadEncodesListsAndMaps(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	var conds Fields
	conds.Set("tag", []string{"a", "b c"})
	conds.Set("range", map[string]any{"to": 5, "from": 1})
	conds.Set("active", true)
	req := b.BuildRead("widgets", QueryData{Conditions: conds})

	want := "tag%5B0%5D=a&tag%5B1%5D=b+c&range%5Bfrom%5D=1&range%5Bto%5D=5&active=1"
	assert.Equal(t, testHost+"/widgets.json?"+want, req.URL)
}

func TestBuildUpdateIgnoresConditions(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	record, err := Combine([]string{"id", "name"}, []any{3, "y"})
	require.NoError(t, err)
	var conds Fields
	conds.Set("owner", "me")

	req := b.BuildUpdate("widgets", record, conds)
	assert.Equal(t, VerbPut, req.Verb)
	assert.Equal(t, testHost+"/widgets", req.URL)
	assert.Equal(t, record, req.Body)
}

func TestBuildDelete(t *testing.T) {
	t.Parallel()
	req := newTestBuilder().BuildDelete("widgets", 5)
	assert.Equal(t, VerbDelete, req.Verb)
	assert.Equal(t, testHost+"/widgets/5", req.URL)
	assert.Nil(t, req.Body)
}

func TestBuildsAreIdempotent(t *testing.T) {
	t.Parallel()
	b := newTestBuilder()

	build := func() []Request {
		var conds Fields
		conds.Set("status", "open")
		conds.Set("tag", []any{"x", "y"})
		record, _ := Combine([]string{"id", "name"}, []any{1, "n"})
		q, _ := b.BuildQuery("widgets", "post", []any{"run", record})
		return []Request{
			q,
			b.BuildCreate("widgets", record, false),
			b.BuildRead("widgets", QueryData{Conditions: conds, Limit: 5, Page: 1}),
			b.BuildUpdate("widgets", record, Fields{}),
			b.BuildDelete("widgets", 1),
		}
	}

	first, second := build(), build()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Verb, second[i].Verb)
		assert.Equal(t, first[i].URL, second[i].URL)
		a, err := json.Marshal(first[i].Body)
		require.NoError(t, err)
		bb, err := json.Marshal(second[i].Body)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(bb))
	}
}

func TestCombineRejectsMismatchedLengths(t *testing.T) {
	t.Parallel()
	_, err := Combine([]string{"id"}, []any{1, 2})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBaseURLIsVerbatim(t *testing.T) {
	t.Parallel()
	b := NewBuilder(Config{Host: "http://h/v1/"})
	assert.Equal(t, "http://h/v1/", b.BaseURL())
	assert.Equal(t, DefaultFormat, b.Format())
}
