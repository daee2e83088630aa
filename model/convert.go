package model

import (
	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/relation"
	"github.com/Slm0nB/play-together-api-sub000/utils"
)

func newUserFromDTO(dto *api.UserDTO) *common.User {
	return &common.User{
		ID:          dto.Id,
		Name:        dto.Name,
		Email:       dto.Email,
		PushToken:   dto.PushToken,
		CreatedDate: utils.UnixMillisToTime(dto.CreatedDate),
	}
}

func userAsDTO(u *common.User) *api.UserDTO {
	return &api.UserDTO{
		Id:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PushToken:   u.PushToken,
		CreatedDate: utils.TimeToMillis(u.CreatedDate),
	}
}

func newSignupFromDTO(dto *api.SignupDTO) *common.Signup {
	return common.NewSignup(dto.EventId, dto.UserId, common.SignupStatus(dto.Status),
		utils.UnixMillisToTime(dto.CreatedDate))
}

func signupAsDTO(s *common.Signup) *api.SignupDTO {
	return &api.SignupDTO{
		EventId:     s.EventID,
		UserId:      s.UserID,
		Status:      api.SignupStatus(s.Status),
		CreatedDate: utils.TimeToMillis(s.CreatedDate),
	}
}

func newEventFromDTO(dto *api.EventDTO) *common.Event {
	event := &common.Event{
		ID:          dto.Id,
		AuthorID:    dto.AuthorId,
		AuthorName:  dto.AuthorName,
		Title:       dto.Title,
		Description: dto.Description,
		FriendsOnly: dto.FriendsOnly,
		GameID:      dto.GameId,
		StartDate:   utils.UnixMillisToTime(dto.StartDate),
		EndDate:     utils.UnixMillisToTime(dto.EndDate),
		CreatedDate: utils.UnixMillisToTime(dto.CreatedDate),
		Signups:     make(map[int64]*common.Signup, len(dto.Signups)),
	}
	for uid, s := range dto.Signups {
		event.Signups[uid] = newSignupFromDTO(s)
	}
	return event
}

func newEventListFromDTO(list []*api.EventDTO) []*common.Event {
	events := make([]*common.Event, 0, len(list))
	for _, dto := range list {
		events = append(events, newEventFromDTO(dto))
	}
	return events
}

func eventAsDTO(e *common.Event) *api.EventDTO {
	dto := &api.EventDTO{
		Id:          e.ID,
		AuthorId:    e.AuthorID,
		AuthorName:  e.AuthorName,
		Title:       e.Title,
		Description: e.Description,
		FriendsOnly: e.FriendsOnly,
		GameId:      e.GameID,
		StartDate:   utils.TimeToMillis(e.StartDate),
		EndDate:     utils.TimeToMillis(e.EndDate),
		CreatedDate: utils.TimeToMillis(e.CreatedDate),
		Signups:     make(map[int64]*api.SignupDTO, len(e.Signups)),
	}
	for uid, s := range e.Signups {
		dto.Signups[uid] = signupAsDTO(s)
	}
	return dto
}

func newRelationFromDTO(dto *api.RelationDTO) (*relation.Relation, error) {
	status, err := relation.DecodeStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	return &relation.Relation{
		UserA:       dto.UserA,
		UserB:       dto.UserB,
		Status:      status,
		CreatedDate: utils.UnixMillisToTime(dto.CreatedDate),
		UpdatedDate: utils.UnixMillisToTime(dto.UpdatedDate),
	}, nil
}

func relationAsDTO(r *relation.Relation) *api.RelationDTO {
	return &api.RelationDTO{
		UserA:       r.UserA,
		UserB:       r.UserB,
		Status:      r.Status.Encode(),
		CreatedDate: utils.TimeToMillis(r.CreatedDate),
		UpdatedDate: utils.TimeToMillis(r.UpdatedDate),
	}
}
