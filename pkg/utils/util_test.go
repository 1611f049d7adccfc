package utils

import (
	"testing"
)

func TestPoseFileName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		ext   string
		want  string
	}{
		{"空白はアンダースコアに変換", "Warrior II", ".png", "yoga_warrior_ii.png"},
		{"記号は除去される", "Downward-Facing Dog!", ".png", "yoga_downward_facing_dog.png"},
		{"拡張子省略時は png", "Tree Pose", "", "yoga_tree_pose.png"},
		{"JPEG拡張子", "Tree Pose", ".jpg", "yoga_tree_pose.jpg"},
		{"空タイトルはフォールバック", "  ", ".png", "yoga_pose.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PoseFileName(tt.title, tt.ext); got != tt.want {
				t.Errorf("PoseFileName(%q, %q) = %q, want %q", tt.title, tt.ext, got, tt.want)
			}
		})
	}
}

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"正常なパブリックURL", "https://www.google.com/favicon.ico", false},
		{"不正なスキーム", "gopher://example.com", true},
		{"GCSスキームは対象外", "gs://my-bucket/path/to/image.png", true},
		{"ループバック", "http://localhost/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"名前解決できないドメイン", "http://this.should.not.exist.invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := IsSafeURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsSafeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !safe {
				t.Errorf("%s: safe URL was flagged as unsafe", tt.url)
			}
			if tt.wantErr && safe {
				t.Errorf("%s: unsafe URL was flagged as safe", tt.url)
			}
		})
	}
}
