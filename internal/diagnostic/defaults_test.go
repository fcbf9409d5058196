package diagnostic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTimeline(t *testing.T) {
	tests := []struct {
		name string
		in   Timeline
		want Timeline
	}{
		{
			name: "range and single day markers",
			in:   Timeline{Text: "第1-3天：复习数据结构 第4天：刷 LeetCode 第5~7天 模拟面试"},
			want: Timeline{Stages: []Stage{
				{Stage: "第1-3天", Task: "复习数据结构"},
				{Stage: "第4天", Task: "刷 LeetCode"},
				{Stage: "第5~7天", Task: "模拟面试"},
			}},
		},
		{
			name: "english day markers with preamble",
			in:   Timeline{Text: "Plan: Day 1: basics Day2: systems"},
			want: Timeline{Stages: []Stage{
				{Stage: "计划", Task: "Plan:"},
				{Stage: "Day 1", Task: "basics"},
				{Stage: "Day2", Task: "systems"},
			}},
		},
		{
			name: "single segment kept as text",
			in:   Timeline{Text: "第1天：全部复习"},
			want: Timeline{Text: "第1天：全部复习"},
		},
		{
			name: "no markers kept as text",
			in:   Timeline{Text: "每天两小时刷题"},
			want: Timeline{Text: "每天两小时刷题"},
		},
		{
			name: "empty becomes empty list",
			in:   Timeline{},
			want: Timeline{Stages: []Stage{}},
		},
		{
			name: "stages untouched",
			in:   Timeline{Stages: []Stage{{Stage: "a", Task: "b"}}},
			want: Timeline{Stages: []Stage{{Stage: "a", Task: "b"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTimeline(tt.in))
		})
	}
}

func TestTimeline_JSON(t *testing.T) {
	data, err := json.Marshal(Timeline{Text: "prose"})
	require.NoError(t, err)
	assert.JSONEq(t, `"prose"`, string(data))

	data, err = json.Marshal(Timeline{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	var tl Timeline
	require.NoError(t, json.Unmarshal([]byte(`{"plan": "每天两小时"}`), &tl))
	assert.Equal(t, "每天两小时", tl.Text)

	require.NoError(t, json.Unmarshal([]byte(`[{"stage": "第1天", "task": "复习"}]`), &tl))
	assert.Equal(t, []Stage{{Stage: "第1天", Task: "复习"}}, tl.Stages)

	assert.Error(t, json.Unmarshal([]byte(`42`), &tl))
}
