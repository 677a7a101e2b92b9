// internal/models/project.go
package models

// ProjectData 项目导出/导入的传输单元
// Timestamp 为导出时刻的毫秒级Unix时间戳
type ProjectData struct {
	Characters []Character `json:"characters"`
	Scripts    []Script    `json:"scripts"`
	Timestamp  int64       `json:"timestamp"`
}
