package engine

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want Kind
	}{
		{"mp3 url", Source{URL: "https://cdn.example.com/ep/123.mp3"}, KindAudio},
		{"mp3 url with query", Source{URL: "https://cdn.example.com/ep/123.mp3?token=x"}, KindAudio},
		{"local flac", Source{File: "/media/episode.flac"}, KindAudio},
		{"mp4 url", Source{URL: "https://cdn.example.com/ep/123.mp4"}, KindVideo},
		{"local m4v", Source{File: "/media/episode.m4v"}, KindVideo},
		{"webm url", Source{URL: "https://cdn.example.com/live.webm"}, KindVideo},
		{"hint wins over audio extension", Source{URL: "https://cdn.example.com/ep.mp3", HasVideoHint: true}, KindVideo},
		{"unknown remote extension", Source{URL: "https://cdn.example.com/stream"}, KindVideo},
		{"missing local file with unknown extension", Source{File: "/nonexistent/file.bin"}, KindVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.src); got != tt.want {
				t.Errorf("Detect(%+v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}
