// internal/services/export_service.go
package services

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/storage"
	"github.com/Corphon/StoryReelStudio/internal/utils"
)

// ExportService 负责项目的导出与导入
// 导出产生可移植的JSON文档；导入在任何存储变更前完成全部校验
type ExportService struct {
	project *ProjectService
	files   *storage.FileStore
}

// NewExportService 创建导出服务
// files 可为nil，此时不在服务端保留导出副本
func NewExportService(project *ProjectService, files *storage.FileStore) *ExportService {
	return &ExportService{
		project: project,
		files:   files,
	}
}

// Export 导出存储的完整状态与捕获时间戳
// 输出为缩进格式的JSON，字段顺序稳定，便于人工查看与比对
func (s *ExportService) Export() ([]byte, error) {
	data := models.ProjectData{
		Characters: s.project.Characters(),
		Scripts:    s.project.Scripts(),
		Timestamp:  time.Now().UnixMilli(),
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化项目失败: %w", err)
	}

	return out, nil
}

// ExportToFile 导出并在服务端保留一份副本，返回文件名
func (s *ExportService) ExportToFile() (string, error) {
	out, err := s.Export()
	if err != nil {
		return "", err
	}

	if s.files == nil {
		return "", fmt.Errorf("未配置文件存储")
	}

	filename := fmt.Sprintf("project_%s.json", time.Now().Format("20060102_150405"))
	if err := s.files.Save(filename, out); err != nil {
		return "", err
	}

	utils.GetLogger().Info("项目已导出", map[string]interface{}{"file": filename})
	return filename, nil
}

// Import 校验并导入一份项目文档
// 文档必须是可解析的JSON对象，且至少包含 characters 或 scripts 之一；
// 不满足时返回 InvalidProjectFile 且存储保持完全不变（原子接受）
func (s *ExportService) Import(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return apperrors.NewInvalidProjectFile("项目文件不是有效的JSON对象", err)
	}

	characters, hasCharacters, err := decodeProjectField[models.Character](fields, "characters")
	if err != nil {
		return err
	}
	scripts, hasScripts, err := decodeProjectField[models.Script](fields, "scripts")
	if err != nil {
		return err
	}

	if !hasCharacters && !hasScripts {
		return apperrors.NewInvalidProjectFile("项目文件既没有characters也没有scripts字段", nil)
	}

	if err := s.project.LoadProject(characters, scripts, hasCharacters, hasScripts); err != nil {
		return err
	}

	utils.GetLogger().Info("项目已导入", map[string]interface{}{
		"characters": len(characters),
		"scripts":    len(scripts),
	})
	return nil
}

// decodeProjectField 解码文档中的一个集合字段
// 字段缺失或为null视为不存在；存在但类型不符视为文件无效
func decodeProjectField[T any](fields map[string]json.RawMessage, name string) ([]T, bool, error) {
	raw, exists := fields[name]
	if !exists || string(raw) == "null" {
		return nil, false, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, apperrors.NewInvalidProjectFile(
			fmt.Sprintf("项目文件的%s字段格式不正确", name), err)
	}

	return out, true, nil
}
