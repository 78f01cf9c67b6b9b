package service

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/domo-app/domo-server/internal/ai"
	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
)

// In-memory store fakes. They mirror the transactional behavior of the
// pgx repositories closely enough for the business rules to be
// exercised without a database.

type fakeUserStore struct {
	users  map[int]*model.User
	nextID int
	grants []int // item ids granted through SpendCoinAndGrantItem
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) add(u model.User) *model.User {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = &u
	return f.users[u.ID]
}

func (f *fakeUserStore) Insert(_ context.Context, u *model.User) (int, error) {
	stored := f.add(*u)
	return stored.ID, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, userID int) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperr.NotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByLoginID(_ context.Context, loginID string) (*model.User, error) {
	for _, u := range f.users {
		if u.LoginID == loginID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID int, hash string) error {
	f.users[userID].PasswordHash = hash
	return nil
}

func (f *fakeUserStore) UpdateDetailPreference(_ context.Context, userID int, pref model.TaskDetailPreference) error {
	f.users[userID].DetailPreference = pref
	return nil
}

func (f *fakeUserStore) UpdateWorkPace(_ context.Context, userID int, pace model.WorkPace) error {
	f.users[userID].WorkPace = pace
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, userID int) error {
	delete(f.users, userID)
	return nil
}

func (f *fakeUserStore) SpendCoinAndGrantItem(_ context.Context, userID, itemID, cost int) error {
	u, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("user", userID)
	}
	if u.Coin < cost {
		return apperr.InsufficientFunds(u.Coin, cost)
	}
	u.Coin -= cost
	f.grants = append(f.grants, itemID)
	return nil
}

type fakeProjectStore struct {
	projects map[int]*model.Project
	nextID   int
	users    *fakeUserStore // credited by CompleteAndReward
}

func newFakeProjectStore(users *fakeUserStore) *fakeProjectStore {
	return &fakeProjectStore{projects: map[int]*model.Project{}, nextID: 1, users: users}
}

func (f *fakeProjectStore) add(p model.Project) *model.Project {
	p.ID = f.nextID
	f.nextID++
	if p.Status == "" {
		p.Status = model.StatusInProgress
	}
	f.projects[p.ID] = &p
	return f.projects[p.ID]
}

func (f *fakeProjectStore) Insert(_ context.Context, p *model.Project) (int, error) {
	stored := f.add(*p)
	return stored.ID, nil
}

func (f *fakeProjectStore) FindByID(_ context.Context, projectID int) (*model.Project, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, apperr.NotFound("project", projectID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectStore) ListByUser(_ context.Context, userID int) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeProjectStore) ListFiltered(ctx context.Context, userID int, tagIDs []int, _ string) ([]model.Project, error) {
	all, _ := f.ListByUser(ctx, userID)
	if len(tagIDs) == 0 {
		return all, nil
	}
	want := map[int]bool{}
	for _, id := range tagIDs {
		want[id] = true
	}
	var out []model.Project
	for _, p := range all {
		if want[p.TagID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) FindRecentByUser(ctx context.Context, userID int) (*model.Project, error) {
	all, _ := f.ListByUser(ctx, userID)
	for _, p := range all {
		if p.Status != model.StatusDone {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperr.InvalidState("no recent project")
}

func (f *fakeProjectStore) Update(_ context.Context, p *model.Project) error {
	stored, ok := f.projects[p.ID]
	if !ok {
		return apperr.NotFound("project", p.ID)
	}
	stored.TagID = p.TagID
	stored.Name = p.Name
	stored.Description = p.Description
	stored.Requirement = p.Requirement
	stored.Deadline = p.Deadline
	return nil
}

func (f *fakeProjectStore) SetLevelFactor(_ context.Context, projectID, factor int) error {
	f.projects[projectID].LevelFactor = factor
	return nil
}

func (f *fakeProjectStore) SetExpectedTime(_ context.Context, projectID, minutes int) error {
	f.projects[projectID].ExpectedTime = minutes
	return nil
}

func (f *fakeProjectStore) SetProgressRate(_ context.Context, projectID, rate int) error {
	f.projects[projectID].ProgressRate = rate
	return nil
}

func (f *fakeProjectStore) Delete(_ context.Context, projectID int) error {
	delete(f.projects, projectID)
	return nil
}

func (f *fakeProjectStore) CompleteAndReward(_ context.Context, projectID, userID, levelFactor, coin, expectedMinutes int) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperr.NotFound("project", projectID)
	}
	if p.Status == model.StatusDone {
		return apperr.InvalidState("project is already completed")
	}
	p.LevelFactor = levelFactor
	p.Coin = coin
	p.ExpectedTime = expectedMinutes
	p.ProgressRate = 100
	p.Status = model.StatusDone
	if f.users != nil {
		if u, ok := f.users.users[userID]; ok {
			u.Coin += coin
		}
	}
	return nil
}

type fakeSubTaskStore struct {
	subtasks map[int]*model.SubTask
	nextID   int
	projects *fakeProjectStore
}

func newFakeSubTaskStore(projects *fakeProjectStore) *fakeSubTaskStore {
	return &fakeSubTaskStore{subtasks: map[int]*model.SubTask{}, nextID: 1, projects: projects}
}

func (f *fakeSubTaskStore) add(st model.SubTask) *model.SubTask {
	st.ID = f.nextID
	f.nextID++
	f.subtasks[st.ID] = &st
	return f.subtasks[st.ID]
}

func (f *fakeSubTaskStore) Insert(_ context.Context, st *model.SubTask) (int, error) {
	stored := f.add(*st)
	return stored.ID, nil
}

func (f *fakeSubTaskStore) InsertBatch(_ context.Context, projectID int, drafts []model.SubTaskDraft) error {
	for _, d := range drafts {
		f.add(model.SubTask{
			ProjectID:    projectID,
			Order:        d.Order,
			Name:         d.Name,
			ExpectedTime: d.ExpectedTime,
			Tag:          d.Tag,
		})
	}
	return nil
}

func (f *fakeSubTaskStore) FindByID(_ context.Context, subTaskID int) (*model.SubTask, error) {
	st, ok := f.subtasks[subTaskID]
	if !ok {
		return nil, apperr.NotFound("subtask", subTaskID)
	}
	cp := *st
	return &cp, nil
}

func (f *fakeSubTaskStore) ListByProject(_ context.Context, projectID int) ([]model.SubTask, error) {
	var out []model.SubTask
	for _, st := range f.subtasks {
		if st.ProjectID == projectID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeSubTaskStore) Update(_ context.Context, st *model.SubTask) error {
	stored, ok := f.subtasks[st.ID]
	if !ok {
		return apperr.NotFound("subtask", st.ID)
	}
	stored.Order = st.Order
	stored.Name = st.Name
	stored.ExpectedTime = st.ExpectedTime
	stored.Tag = st.Tag
	return nil
}

func (f *fakeSubTaskStore) SetActualTime(_ context.Context, subTaskID, minutes int) error {
	m := minutes
	f.subtasks[subTaskID].ActualTime = &m
	return nil
}

func (f *fakeSubTaskStore) Delete(_ context.Context, subTaskID int) error {
	delete(f.subtasks, subTaskID)
	return nil
}

func (f *fakeSubTaskStore) AggregatesForProject(ctx context.Context, projectID int) (model.SubTaskAggregates, error) {
	all, _ := f.ListByProject(ctx, projectID)
	var agg model.SubTaskAggregates
	for _, st := range all {
		agg.Count++
		agg.SumExpectedTime += st.ExpectedTime
		if st.IsDone {
			agg.DoneCount++
		}
	}
	return agg, nil
}

func (f *fakeSubTaskStore) ListMeasuredByUser(_ context.Context, userID int) ([]model.SubTask, error) {
	var out []model.SubTask
	for _, st := range f.subtasks {
		if st.ActualTime == nil {
			continue
		}
		p, ok := f.projects.projects[st.ProjectID]
		if !ok || p.UserID != userID {
			continue
		}
		out = append(out, *st)
	}
	return out, nil
}

func (f *fakeSubTaskStore) SetDone(ctx context.Context, subTaskID int, done bool) (model.ProjectStatus, error) {
	st, ok := f.subtasks[subTaskID]
	if !ok {
		return "", apperr.NotFound("subtask", subTaskID)
	}
	st.IsDone = done
	return f.SyncProject(ctx, st.ProjectID)
}

func (f *fakeSubTaskStore) SyncProject(ctx context.Context, projectID int) (model.ProjectStatus, error) {
	p, ok := f.projects.projects[projectID]
	if !ok {
		return "", apperr.NotFound("project", projectID)
	}
	agg, _ := f.AggregatesForProject(ctx, projectID)
	p.Status = model.NextStatus(p.Status, agg.DoneCount, agg.Count)
	p.ProgressRate = model.ProgressRate(agg.DoneCount, agg.Count)
	return p.Status, nil
}

type fakeTagStore struct {
	tags       map[int]*model.ProjectTag
	nextID     int
	projectsBy *fakeProjectStore
}

func newFakeTagStore(projects *fakeProjectStore) *fakeTagStore {
	return &fakeTagStore{tags: map[int]*model.ProjectTag{}, nextID: 1, projectsBy: projects}
}

func (f *fakeTagStore) add(t model.ProjectTag) *model.ProjectTag {
	t.ID = f.nextID
	f.nextID++
	f.tags[t.ID] = &t
	return f.tags[t.ID]
}

func (f *fakeTagStore) Insert(_ context.Context, t *model.ProjectTag) (int, error) {
	stored := f.add(*t)
	return stored.ID, nil
}

func (f *fakeTagStore) FindByID(_ context.Context, tagID int) (*model.ProjectTag, error) {
	t, ok := f.tags[tagID]
	if !ok {
		return nil, apperr.NotFound("project tag", tagID)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTagStore) FindByUserAndName(_ context.Context, userID int, name string) (*model.ProjectTag, error) {
	for _, t := range f.tags {
		if t.UserID == userID && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.InvalidState("no project tag named " + name)
}

func (f *fakeTagStore) ExistsByUserAndName(_ context.Context, userID int, name string) (bool, error) {
	for _, t := range f.tags {
		if t.UserID == userID && t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTagStore) ListByUser(_ context.Context, userID int) ([]model.ProjectTag, error) {
	var out []model.ProjectTag
	for _, t := range f.tags {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTagStore) CountProjectsUsing(_ context.Context, tagID int) (int, error) {
	n := 0
	if f.projectsBy != nil {
		for _, p := range f.projectsBy.projects {
			if p.TagID == tagID {
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeTagStore) Delete(_ context.Context, tagID int) error {
	delete(f.tags, tagID)
	return nil
}

type fakeRateStore struct {
	rates map[int]map[model.SubTaskTag]float64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{rates: map[int]map[model.SubTaskTag]float64{}}
}

func (f *fakeRateStore) Upsert(_ context.Context, userID int, tag model.SubTaskTag, rate float64) error {
	if f.rates[userID] == nil {
		f.rates[userID] = map[model.SubTaskTag]float64{}
	}
	f.rates[userID][tag] = rate
	return nil
}

func (f *fakeRateStore) ListByUser(_ context.Context, userID int) ([]model.UserTagRate, error) {
	var out []model.UserTagRate
	for tag, rate := range f.rates[userID] {
		out = append(out, model.UserTagRate{UserID: userID, Tag: tag, Rate: rate})
	}
	return out, nil
}

type fakeItemStore struct {
	items    []model.Item
	ownedBy  map[int][]int
	equipped map[int]*model.Item
}

func newFakeItemStore(items ...model.Item) *fakeItemStore {
	return &fakeItemStore{
		items:    items,
		ownedBy:  map[int][]int{},
		equipped: map[int]*model.Item{},
	}
}

func (f *fakeItemStore) FindByID(_ context.Context, itemID int) (*model.Item, error) {
	for _, it := range f.items {
		if it.ID == itemID {
			cp := it
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("item", itemID)
}

func (f *fakeItemStore) ListAll(_ context.Context) ([]model.Item, error) {
	return append([]model.Item(nil), f.items...), nil
}

func (f *fakeItemStore) ListOwnedIDsByUser(_ context.Context, userID int) ([]int, error) {
	return append([]int(nil), f.ownedBy[userID]...), nil
}

func (f *fakeItemStore) FindLatestEquipped(_ context.Context, userID int) (*model.Item, error) {
	it, ok := f.equipped[userID]
	if !ok {
		return nil, apperr.InvalidState("no equipped item yet")
	}
	cp := *it
	return &cp, nil
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

type publishedEvent struct {
	routingKey string
	payload    any
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type fakeAdvisor struct {
	drafts []model.SubTaskDraft
	level  model.ProjectLevel
	err    error

	lastGenerate ai.GenerateInput
	lastPredict  ai.PredictInput
}

func (f *fakeAdvisor) GenerateSubTasks(_ context.Context, in ai.GenerateInput) ([]model.SubTaskDraft, error) {
	f.lastGenerate = in
	if f.err != nil {
		return nil, f.err
	}
	return f.drafts, nil
}

func (f *fakeAdvisor) PredictLevel(_ context.Context, in ai.PredictInput) (model.ProjectLevel, error) {
	f.lastPredict = in
	if f.err != nil {
		return "", f.err
	}
	return f.level, nil
}

type fakeTagRates struct {
	percents map[model.SubTaskTag]int
}

func (f *fakeTagRates) RatePercents(context.Context, int) (map[model.SubTaskTag]int, error) {
	if f.percents == nil {
		return map[model.SubTaskTag]int{}, nil
	}
	return f.percents, nil
}
