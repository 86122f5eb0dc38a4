package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thesyncim/todo-e2e/pkg/todo"
)

func sampleReport() todo.Report {
	return todo.Report{
		Duration: 1500 * time.Millisecond,
		Results: []todo.Result{
			{Name: "PageStructure", Passed: true, Duration: 200 * time.Millisecond},
			{Name: "BulkAdd", Err: errors.New(`expect(ul li).toHaveCount("3") failed`), Duration: time.Second},
		},
	}
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputText))

	out := buf.String()
	assert.Contains(t, out, "PASS  PageStructure")
	assert.Contains(t, out, "FAIL  BulkAdd")
	assert.Contains(t, out, `toHaveCount("3")`)
	assert.Contains(t, out, "Passed:   1")
	assert.Contains(t, out, "Failed:   1")
	assert.True(t, strings.HasSuffix(out, "Status:   FAIL\n"))
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputJSON))

	var v reportView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, 1, v.Passed)
	assert.Equal(t, 1, v.Failed)
	require.Len(t, v.Results, 2)
	assert.Equal(t, "PASS", v.Results[0].Status)
	assert.Empty(t, v.Results[0].Error)
	assert.Equal(t, "FAIL", v.Results[1].Status)
	assert.Equal(t, "1s", v.Results[1].Duration)
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), outputYAML))

	var v reportView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "1.5s", v.Duration)
	require.Len(t, v.Results, 2)
	assert.Equal(t, "BulkAdd", v.Results[1].Name)
	assert.Contains(t, v.Results[1].Error, "toHaveCount")
}

func TestListCommand(t *testing.T) {
	var buf bytes.Buffer
	listCmd.SetOut(&buf)
	defer listCmd.SetOut(nil)

	require.NoError(t, listCmd.RunE(listCmd, nil))
	assert.Equal(t, "PageStructure\nAddAndDelete\nEmptyState\nBulkAdd\n", buf.String())
}
