package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
)

// Advisor asks the language model for subtask drafts and difficulty
// verdicts. It never writes persisted state; callers own persistence.
type Advisor struct {
	client *Client
	logger *zap.Logger
}

func NewAdvisor(client *Client, logger *zap.Logger) *Advisor {
	return &Advisor{client: client, logger: logger}
}

// GenerateInput carries everything the subtask prompt needs: the user's
// working traits, the project fields, and the per-tag percentage of
// actual-vs-expected time (100 = on estimate).
type GenerateInput struct {
	DetailPreference model.TaskDetailPreference
	WorkPace         model.WorkPace
	ProjectName      string
	Description      string
	Requirement      string
	Deadline         time.Time
	Today            time.Time
	TagPercents      map[model.SubTaskTag]int
}

// PredictInput carries the project fields the difficulty prompt needs.
type PredictInput struct {
	ProjectName  string
	Description  string
	Requirement  string
	Deadline     time.Time
	Today        time.Time
	ExpectedTime int
}

type subTaskListResponse struct {
	SubTaskList []subTaskDraftJSON `json:"subTaskList"`
}

type subTaskDraftJSON struct {
	Order        int    `json:"subTaskOrder"`
	Name         string `json:"subTaskName"`
	ExpectedTime int    `json:"subTaskExpectedTime"`
	Tag          string `json:"subTaskTag"`
}

type projectLevelResponse struct {
	ProjectLevel string `json:"projectLevel"`
}

// GenerateSubTasks returns an ordered list of drafts. A response with
// no list, an empty list, or an unknown tag fails as an external
// service error; nothing is guessed on the caller's behalf.
func (a *Advisor) GenerateSubTasks(ctx context.Context, in GenerateInput) ([]model.SubTaskDraft, error) {
	prompt := buildGeneratePrompt(in)
	a.logger.Debug("Requesting subtask generation", zap.String("project", in.ProjectName))

	content, err := a.client.Complete(ctx, "generate_subtasks", prompt)
	if err != nil {
		return nil, err
	}

	var parsed subTaskListResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return nil, apperr.ExternalService("unparseable subtask list from model", err)
	}
	if len(parsed.SubTaskList) == 0 {
		return nil, apperr.ExternalService("model response is missing subTaskList", nil)
	}

	drafts := make([]model.SubTaskDraft, 0, len(parsed.SubTaskList))
	for _, d := range parsed.SubTaskList {
		tag, err := model.ParseSubTaskTag(d.Tag)
		if err != nil {
			return nil, apperr.ExternalService("model produced an unknown subtask tag", err)
		}
		drafts = append(drafts, model.SubTaskDraft{
			Order:        d.Order,
			Name:         d.Name,
			ExpectedTime: d.ExpectedTime,
			Tag:          tag,
		})
	}

	a.logger.Info("Subtask drafts generated",
		zap.String("project", in.ProjectName),
		zap.Int("count", len(drafts)),
	)
	return drafts, nil
}

// PredictLevel returns the model's difficulty verdict (상/중/하). Any
// other answer is an external service error.
func (a *Advisor) PredictLevel(ctx context.Context, in PredictInput) (model.ProjectLevel, error) {
	prompt := buildPredictPrompt(in)
	a.logger.Debug("Requesting level prediction", zap.String("project", in.ProjectName))

	content, err := a.client.Complete(ctx, "predict_level", prompt)
	if err != nil {
		return "", err
	}

	var parsed projectLevelResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return "", apperr.ExternalService("unparseable level verdict from model", err)
	}
	level, err := model.ParseProjectLevel(parsed.ProjectLevel)
	if err != nil {
		return "", apperr.ExternalService("model produced an unknown project level", err)
	}

	a.logger.Info("Level predicted",
		zap.String("project", in.ProjectName),
		zap.String("level", string(level)),
	)
	return level, nil
}

func buildGeneratePrompt(in GenerateInput) string {
	var rates strings.Builder
	for _, tag := range model.AllSubTaskTags() {
		percent, ok := in.TagPercents[tag]
		if !ok {
			percent = 100
		}
		fmt.Fprintf(&rates, "- %s: %d%%\n", tag, percent)
	}

	return fmt.Sprintf(`이 사용자는 세분화 선호도는 [%s]이고, 작업 여유 성향은 [%s]이야.
[%s]라는 프로젝트 이름과 [%s]이라는 프로젝트 설명, [%s]라는 프로젝트 요구사항, 그리고 현재 날짜는 [%s]이고 프로젝트 데드라인 [%s]을 갖는 프로젝트야.

이 프로젝트의 실제 하위작업 리스트(subTaskList)를 만들어줘. 하위작업에는 다음 정보를 포함해줘:
하위작업 순서(subTaskOrder), 하위작업 제목(subTaskName), 하위작업 예상 소요시간(subTaskExpectedTime), 하위작업 태그(subTaskTag)

각 하위작업에는 실제 사용자의 작업 성향을 고려해서 예상 소요시간을 조정해줘.
단, 예상 소요시간(subTaskExpectedTime)은 **분 단위(minute)**로 정수로 표현해줘.
사용자의 태그별 예측 대비 실제 소요 시간 비율은 다음과 같아:
%s
예를 들어 DEVELOPMENT 작업에서 130%%이면, 해당 작업은 평균보다 30%% 더 걸린다고 보면 돼.
이 소요율을 참고해서 각 하위작업의 예상 소요시간을 현실적으로 조정해줘.

각 하위작업에 대해, 작업의 특성과 목적에 가장 잘 어울리는 태그를 다음 중에서 하나 골라서 지정해줘:
DOCUMENTATION, PLANNING_STRATEGY, DEVELOPMENT, DESIGN, RESEARCH_ANALYSIS, COMMUNICATION, OPERATIONS, EXERCISE, PERSONAL_LIFE

단, subTaskName(작업 제목)은 반드시 한국어로 작성해줘. 나머지 데이터는 그대로 영어 형식을 유지해.
하위작업 리스트만 JSON 데이터 형식으로 응답해줘.`,
		in.DetailPreference,
		in.WorkPace,
		in.ProjectName,
		in.Description,
		in.Requirement,
		in.Today.Format("2006-01-02"),
		in.Deadline.Format("2006-01-02"),
		rates.String(),
	)
}

func buildPredictPrompt(in PredictInput) string {
	return fmt.Sprintf(`너는 프로젝트 난이도를 예측해주는 AI야.

아래 정보를 바탕으로 프로젝트의 난이도를 '상', '중', '하' 중 하나로 판단해줘.

- 프로젝트 이름: %s
- 프로젝트 설명: %s
- 프로젝트 요구사항: %s
- 오늘 날짜: %s
- 마감 기한: %s
- 예상 소요 시간 (분 단위): %d

판단 기준은 다음과 같아:
- 프로젝트 마감까지 시간이 촉박해서 마감기한 내에 프로젝트 해결이 어렵거나,
- 예상 소요 시간이 너무 길거나,
- 요구사항이 많고 복잡해 보이면 '상'
- 일반적이고 평이한 수준이면 '중'
- 간단하거나 여유롭고 쉬워 보이면 '하'

결과는 반드시 다음 형식의 JSON으로 응답해:
{ "projectLevel": "상" }`,
		in.ProjectName,
		in.Description,
		in.Requirement,
		in.Today.Format("2006-01-02"),
		in.Deadline.Format("2006-01-02"),
		in.ExpectedTime,
	)
}

// stripCodeFence unwraps content the model wrapped in a markdown code
// block (``` or ```json).
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
