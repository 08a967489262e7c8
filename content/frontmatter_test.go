package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		fm      string
		body    string
		had     bool
		wantErr error
	}{
		{"no frontmatter", "# Title\n", "", "# Title\n", false, nil},
		{"basic", "---\ntitle: x\n---\nbody\n", "title: x\n", "body\n", true, nil},
		{"crlf", "---\r\ntitle: x\r\n---\r\nbody", "title: x\r\n", "body", true, nil},
		{"empty", "---\n---\nbody", "", "body", true, nil},
		{"closing at eof", "---\ntitle: x\n---", "title: x", "", true, nil},
		{"unclosed", "---\ntitle: x\nbody", "", "", false, ErrMissingClosingDelimiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, had, err := Split([]byte(tt.in))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.had, had)
			assert.Equal(t, tt.fm, string(fm))
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestParseFrontmatterDates(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00+08:00", time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			fm, err := parseFrontmatter([]byte("pubDatetime: " + tt.value + "\n"))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(fm.PubDatetime.Time), "got %s", fm.PubDatetime.Time)
		})
	}
}

func TestParseFrontmatterFields(t *testing.T) {
	fm, err := parseFrontmatter([]byte(`
title: Hello
description: A post
slug: custom/hello
pubDatetime: 2024-01-01
modDatetime: null
tags: [Go, Web]
ogImage: cover.png
draft: true
`))
	require.NoError(t, err)
	assert.Equal(t, "Hello", fm.Title)
	assert.Equal(t, "A post", fm.Description)
	assert.Equal(t, "custom/hello", fm.Slug)
	assert.Nil(t, fm.ModDatetime)
	assert.Equal(t, []string{"Go", "Web"}, fm.Tags)
	assert.Equal(t, "cover.png", fm.OGImage)
	assert.True(t, fm.Draft)
}

func TestParseFrontmatterBadDate(t *testing.T) {
	_, err := parseFrontmatter([]byte("pubDatetime: yesterday\n"))
	assert.ErrorContains(t, err, "cannot parse")
}

func TestParseFrontmatterEmpty(t *testing.T) {
	fm, err := parseFrontmatter([]byte("  \n"))
	require.NoError(t, err)
	assert.True(t, fm.PubDatetime.IsZero())
}
