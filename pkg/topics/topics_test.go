// pkg/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem (fstest), cobra
// PURPOSE: Test topic scanning, lookup and the help command

package topics_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/cogsync/pkg/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"dry-run.txt":        {Data: []byte("Information about dry-run mode")},
		"architecture.md":    {Data: []byte("# Architecture\n\nSystem architecture details")},
		"option-source.md":   {Data: []byte("source option")},
		"nested/concepts.md": {Data: []byte("concepts")},
		"config.txxt":        {Data: []byte("Configuration Guide")},
		"ignore.json":        {Data: []byte("This should be ignored")},
	}
}

func TestTopicManager_Scan(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := topics.New(testFS(), topics.Options{})
		require.NoError(t, tm.Scan())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"dry-run", true, "Information about dry-run mode"},
			{"architecture", true, "# Architecture\n\nSystem architecture details"},
			{"concepts", true, "concepts"},
			{"config", false, ""},
			{"ignore", false, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, ok := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, ok)
				if ok {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := topics.New(testFS(), topics.Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.Scan())
		assert.Equal(t, []string{"config"}, tm.ListTopics())
	})
}

func TestTopicManager_GetTopicFlagStyle(t *testing.T) {
	tm := topics.New(testFS(), topics.Options{})
	require.NoError(t, tm.Scan())

	topic, ok := tm.GetTopic("--source")
	require.True(t, ok)
	assert.Equal(t, "option-source", topic.Name)

	_, ok = tm.GetTopic("--nope")
	assert.False(t, ok)
}

func TestTopicManager_WriteList(t *testing.T) {
	tm := topics.New(testFS(), topics.Options{})
	require.NoError(t, tm.Scan())

	var buf bytes.Buffer
	tm.WriteList(&buf, "cogsync")
	out := buf.String()
	assert.Contains(t, out, "General topics:\n  architecture\n  concepts\n  dry-run\n")
	assert.Contains(t, out, "Option topics:\n  --source\n")
	assert.Contains(t, out, "Use 'cogsync help <topic>'")

	empty := topics.New(fstest.MapFS{}, topics.Options{})
	require.NoError(t, empty.Scan())
	buf.Reset()
	empty.WriteList(&buf, "cogsync")
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func TestBuiltinTopics(t *testing.T) {
	tm := topics.New(topics.Builtin(), topics.Options{})
	require.NoError(t, tm.Scan())

	for _, name := range []string{"manifest", "outcomes", "templates", "config", "dry-run", "source"} {
		_, ok := tm.GetTopic(name)
		assert.True(t, ok, name)
	}
}

func TestInitialize_HelpCommand(t *testing.T) {
	root := &cobra.Command{Use: "cogsync"}
	root.AddCommand(&cobra.Command{Use: "update", Short: "Run a sync", Run: func(*cobra.Command, []string) {}})

	_, err := topics.Initialize(root, testFS(), topics.Options{})
	require.NoError(t, err)

	run := func(args ...string) string {
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return buf.String()
	}

	assert.Equal(t, "Information about dry-run mode", run("help", "dry-run"))
	assert.Contains(t, run("help", "topics"), "architecture")
	assert.Contains(t, run("help", "update"), "Run a sync")
}

func TestGlamourRenderer_NonMarkdownPassesThrough(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain", r.Render("plain", ".txt"))

	out := (&topics.GlamourRenderer{Style: "notty", Width: 40}).Render("# Title\n\nbody", ".md")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}
