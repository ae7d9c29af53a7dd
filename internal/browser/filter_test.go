package browser

import "testing"

func TestShouldLogRequest(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "api endpoint",
			url:  "http://localhost:3000/api/users",
			want: true,
		},
		{
			name: "graphql endpoint",
			url:  "http://localhost:3000/graphql",
			want: true,
		},
		{
			name: "document root",
			url:  "http://localhost:3000/",
			want: true,
		},
		{
			name: "node_modules bundle",
			url:  "http://localhost:3000/node_modules/react/index.js",
			want: false,
		},
		{
			name: "javascript asset",
			url:  "http://localhost:3000/static/app.js",
			want: false,
		},
		{
			name: "stylesheet with query params",
			url:  "http://localhost:3000/app.css?v=2",
			want: false,
		},
		{
			name: "font file",
			url:  "http://localhost:3000/fonts/inter.woff2",
			want: false,
		},
		{
			name: "image",
			url:  "http://localhost:3000/logo.png",
			want: false,
		},
		{
			name: "source map",
			url:  "http://localhost:3000/app.js.map",
			want: false,
		},
		{
			name: "xhr without api prefix",
			url:  "http://localhost:3000/users/42",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldLogRequest(tt.url); got != tt.want {
				t.Errorf("ShouldLogRequest(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
