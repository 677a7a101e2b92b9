// internal/storage/file_store.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore 提供简单的文件存储服务
// 用于在服务端保留项目导出文档的副本
type FileStore struct {
	BaseDir string

	// 文件级别锁 path -> *sync.RWMutex
	fileLocks sync.Map
}

// NewFileStore 创建文件存储服务
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	return &FileStore{BaseDir: baseDir}, nil
}

// getFileLock 获取文件锁
func (fs *FileStore) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Save 原子性地保存文件：先写临时文件再重命名
func (fs *FileStore) Save(filename string, content []byte) error {
	fullPath := filepath.Join(fs.BaseDir, filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("重命名临时文件失败: %w", err)
	}

	return nil
}

// Load 读取文件内容
func (fs *FileStore) Load(filename string) ([]byte, error) {
	fullPath := filepath.Join(fs.BaseDir, filename)

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	return data, nil
}

// Exists 检查文件是否存在
func (fs *FileStore) Exists(filename string) bool {
	fullPath := filepath.Join(fs.BaseDir, filename)
	_, err := os.Stat(fullPath)
	return err == nil
}

// List 按文件名排序返回指定后缀的全部文件
func (fs *FileStore) List(suffix string) ([]string, error) {
	entries, err := os.ReadDir(fs.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("读取存储目录失败: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tmp") {
			continue
		}
		if suffix == "" || strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}
