package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
)

const editedName = "edited.png"

// ImageStore 磁盘上的原图和着色结果
type ImageStore struct {
	originalDir string
	editedDir   string
}

func NewImageStore(root string) (*ImageStore, error) {
	s := &ImageStore{
		originalDir: filepath.Join(root, "original"),
		editedDir:   filepath.Join(root, "edited"),
	}
	for _, dir := range []string{s.originalDir, s.editedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveOriginal 保存上传原图，文件名随机生成，仅保留扩展名
func (s *ImageStore) SaveOriginal(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	path := filepath.Join(s.originalDir, utils.GenerateID()+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *ImageStore) EditedPath() string {
	return filepath.Join(s.editedDir, editedName)
}

// ReadEdited 读取着色结果，不存在时返回 model.ErrNoEditedImage
func (s *ImageStore) ReadEdited() ([]byte, error) {
	data, err := os.ReadFile(s.EditedPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, model.ErrNoEditedImage
	}
	return data, err
}

func (s *ImageStore) HasEdited() bool {
	_, err := os.Stat(s.EditedPath())
	return err == nil
}

// WriteEdited 先写临时文件再重命名，读取方不会看到半写入的结果
func (s *ImageStore) WriteEdited(data []byte) error {
	tmp, err := os.CreateTemp(s.editedDir, "edited-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.EditedPath())
}

func (s *ImageStore) RemoveEdited() error {
	err := os.Remove(s.EditedPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RemoveOriginal 删除被替换的原图
func (s *ImageStore) RemoveOriginal(path string) error {
	if path == "" || filepath.Dir(path) != s.originalDir {
		return nil
	}
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
