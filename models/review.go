package models

import (
	"encoding/json"
)

// 评审状态的封闭枚举
const (
	StatusNew       = "new"
	StatusScreen    = "screen"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
	StatusOnHold    = "on-hold"
)

var ReviewStatuses = []string{
	StatusNew, StatusScreen, StatusInterview, StatusOffer, StatusRejected, StatusOnHold,
}

var EnrollmentAnswers = []string{"Yes", "No", "Not sure"}

// NoteCategories 评审笔记的已知分类
var NoteCategories = []string{
	"powWow", "passion", "technicalKnowledge", "softwareAbility", "aesthetics", "general",
}

// ReviewData 申请 data 中的 reviewData 子文档。
// 已知字段强类型化，未知字段保留在 Extra 中原样回写。
type ReviewData struct {
	Rank                 *int                   `json:"rank,omitempty"`
	Status               string                 `json:"status,omitempty"`
	UniversityEnrollment string                 `json:"universityEnrollment,omitempty"`
	Notes                map[string]string      `json:"notes,omitempty"`
	LastUpdated          string                 `json:"lastUpdated,omitempty"`
	Extra                map[string]interface{} `json:"-"`
}

// ReviewPatch 评审部分更新请求体，缺省字段不触及已有值
type ReviewPatch struct {
	Rank                 *int              `json:"rank"`
	Status               *string           `json:"status"`
	UniversityEnrollment *string           `json:"universityEnrollment"`
	Notes                map[string]string `json:"notes"`
}

// 已知字段的 JSON 键，反序列化时从 Extra 中剔除
var reviewDataKnownKeys = map[string]bool{
	"rank":                 true,
	"status":               true,
	"universityEnrollment": true,
	"notes":                true,
	"lastUpdated":          true,
}

type reviewDataAlias ReviewData

func (r *ReviewData) UnmarshalJSON(data []byte) error {
	var alias reviewDataAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range reviewDataKnownKeys {
		delete(raw, key)
	}

	*r = ReviewData(alias)
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

func (r ReviewData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+5)
	for key, value := range r.Extra {
		out[key] = value
	}
	if r.Rank != nil {
		out["rank"] = *r.Rank
	}
	if r.Status != "" {
		out["status"] = r.Status
	}
	if r.UniversityEnrollment != "" {
		out["universityEnrollment"] = r.UniversityEnrollment
	}
	if len(r.Notes) > 0 {
		out["notes"] = r.Notes
	}
	if r.LastUpdated != "" {
		out["lastUpdated"] = r.LastUpdated
	}
	return json.Marshal(out)
}

// ToMap 转成可写回 datatypes.JSONMap 的 map 形式
func (r ReviewData) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseReviewData 从 data 文档中解析 reviewData，缺失视为空对象
func ParseReviewData(value interface{}) (*ReviewData, error) {
	review := &ReviewData{}
	if value == nil {
		return review, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, review); err != nil {
		return nil, err
	}
	return review, nil
}
