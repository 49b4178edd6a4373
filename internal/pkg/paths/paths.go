package paths

import (
	"os"
	"path/filepath"
)

// GetDataDir 获取应用数据目录
func GetDataDir() string {
	userConfigDir, err := os.UserConfigDir()
	if err != nil || userConfigDir == "" {
		return filepath.Join(".", "data")
	}
	return filepath.Join(userConfigDir, "financial-agent")
}

// GetSessionDir 获取会话存储目录，确保目录存在
func GetSessionDir() string {
	dir := filepath.Join(GetDataDir(), "sessions")
	os.MkdirAll(dir, 0755)
	return dir
}
