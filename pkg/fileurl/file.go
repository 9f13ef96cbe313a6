// Package fileurl 文件路径工具
package fileurl

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 所在目录
func CreatePath(dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), perm); err != nil {
		return errors.Wrapf(err, "create directory for %s", dst)
	}
	return nil
}

// ResolvePath returns path unchanged when absolute, otherwise joined to root (or the working directory)
// ResolvePath 相对路径拼接到 root（为空时使用工作目录）
func ResolvePath(path string, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if root == "" {
		root, _ = os.Getwd()
	}
	return filepath.Join(root, path)
}
