package model

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

type UnitType string

const (
	UnitChapter  UnitType = "chapter"
	UnitExercise UnitType = "exercise"
)

const ContentMarkdown = "markdown"

// UnitContent 既可能是 {format, body}，也可能是任意结构化JSON，原文保存在 Raw
type UnitContent struct {
	Format string         `json:"format,omitempty"`
	Body   string         `json:"body,omitempty"`
	Raw    datatypes.JSON `json:"-"`
}

func (c *UnitContent) UnmarshalJSON(data []byte) error {
	c.Raw = append(datatypes.JSON(nil), data...)
	var shaped struct {
		Format string `json:"format"`
		Body   string `json:"body"`
	}
	// 非对象内容（数组、字符串）只保留原文
	if err := json.Unmarshal(data, &shaped); err == nil {
		c.Format = shaped.Format
		c.Body = shaped.Body
	}
	return nil
}

func (c UnitContent) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw.MarshalJSON()
	}
	return json.Marshal(struct {
		Format string `json:"format,omitempty"`
		Body   string `json:"body,omitempty"`
	}{c.Format, c.Body})
}

type Unit struct {
	ID         string      `json:"id"`
	ModuleID   string      `json:"module_id,omitempty"`
	Title      string      `json:"title"`
	UnitType   UnitType    `json:"unit_type,omitempty"`
	OrderIndex int         `json:"order_index"`
	Content    UnitContent `json:"content"`
	Assets     []Asset     `json:"assets,omitempty"`
}

type Module struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id,omitempty"`
	Title      string `json:"title"`
	OrderIndex int    `json:"order_index"`
	Units      []Unit `json:"units"`
}

// Outline 课程的 模块→单元 树
type Outline struct {
	Course  *Course  `json:"course,omitempty"`
	Modules []Module `json:"modules"`
}

// Sort 按 order_index 稳定排序模块和单元
func (o *Outline) Sort() {
	sort.SliceStable(o.Modules, func(i, j int) bool {
		return o.Modules[i].OrderIndex < o.Modules[j].OrderIndex
	})
	for i := range o.Modules {
		units := o.Modules[i].Units
		sort.SliceStable(units, func(a, b int) bool {
			return units[a].OrderIndex < units[b].OrderIndex
		})
	}
}
