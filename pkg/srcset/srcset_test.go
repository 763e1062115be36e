// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package srcset

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_parse(t *testing.T) {
	tests := []struct {
		name       string
		args       string
		want       SourceSet
		wantString string
	}{
		{
			name: "bare URL",
			args: "map-icon.png",
			want: SourceSet{
				ImageSource{URL: "map-icon.png"},
			},
			wantString: "map-icon.png",
		},
		{
			name: "densities",
			args: "thumb.png 1x, thumb@2x.png 2x",
			want: SourceSet{
				ImageSource{URL: "thumb.png", Density: 1},
				ImageSource{URL: "thumb@2x.png", Density: 2},
			},
			wantString: "thumb.png 1x, thumb@2x.png 2x",
		},
		{
			name: "fractional density",
			args: "low.png 1.5x",
			want: SourceSet{
				ImageSource{URL: "low.png", Density: 1.5},
			},
			wantString: "low.png 1.5x",
		},
		{
			name: "widths with line breaks",
			args: `a-320.jpg 320w,
			       a-640.jpg 640w`,
			want: SourceSet{
				ImageSource{URL: "a-320.jpg", Width: 320},
				ImageSource{URL: "a-640.jpg", Width: 640},
			},
			wantString: "a-320.jpg 320w, a-640.jpg 640w",
		},
		{
			name: "heights",
			args: "b-100.jpg 100h, b-200.jpg 200h",
			want: SourceSet{
				ImageSource{URL: "b-100.jpg", Height: 100},
				ImageSource{URL: "b-200.jpg", Height: 200},
			},
			wantString: "b-100.jpg 100h, b-200.jpg 200h",
		},
		{
			name: "invalid: width and density",
			args: "c.png 320w 2x",
			want: SourceSet{},
		},
		{
			name: "invalid: duplicate density",
			args: "c.png 1x 2x",
			want: SourceSet{},
		},
		{
			name: "invalid: zero width",
			args: "c.png 0w",
			want: SourceSet{},
		},
		{
			name: "invalid: negative density",
			args: "c.png -2x",
			want: SourceSet{},
		},
		{
			name: "invalid: word descriptor",
			args: "c.png large",
			want: SourceSet{},
		},
		{
			name: "one bad candidate among good ones",
			args: "a.png 1x, b.png 9q, c.png 2x",
			want: SourceSet{
				ImageSource{URL: "a.png", Density: 1},
				ImageSource{URL: "c.png", Density: 2},
			},
			wantString: "a.png 1x, c.png 2x",
		},
		{
			name: "data URIs with commas",
			args: "data:,a ( , data:,b 1x, ), data:,c",
			want: SourceSet{
				ImageSource{URL: "data:,c"},
			},
			wantString: "data:,c",
		},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i+1)+"_"+test.name, func(t *testing.T) {
			assert := require.New(t)
			p := Parse(test.args)
			assert.Equal(test.want, p)
			if len(test.want) > 0 {
				assert.Equal(test.wantString, p.String())
			}
		})
	}
}
