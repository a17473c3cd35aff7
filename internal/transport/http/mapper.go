package http

import (
	"encoding/json"

	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/proto"
)

const (
	errCodeBadRequest  = "bad_request"
	errCodeInvalidType = "invalid_message"
	errCodeRateLimited = "rate_limited"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeAddUser:
		var name string
		if err := json.Unmarshal(inbound.Data, &name); err != nil {
			return nil, nil, err
		}
		if name == "" {
			return nil, &proto.Error{Code: errCodeBadRequest, Msg: "username is required"}, nil
		}
		return &core.Command{Kind: core.CommandAddUser, Name: name}, nil, nil

	case proto.InboundTypeNewMessage:
		var text string
		if err := json.Unmarshal(inbound.Data, &text); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandSendMessage, Text: text}, nil, nil

	case proto.InboundTypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil, nil

	case proto.InboundTypeStopTyping:
		return &core.Command{Kind: core.CommandStopTyping}, nil, nil

	default:
		return nil, &proto.Error{Code: errCodeInvalidType, Msg: "unknown event type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventLogin:
		return proto.Outbound{
			Type: proto.OutboundTypeLogin,
			Data: proto.LoginData{NumUsers: event.NumUsers},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.UserJoinedData{Username: event.Username, NumUsers: event.NumUsers},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeNewMessage,
			Data: proto.NewMessageData{Username: event.Username, Message: event.Text},
		}
	case core.EventTyping:
		return proto.Outbound{
			Type: proto.OutboundTypeTyping,
			Data: proto.TypingData{Username: event.Username},
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Type: proto.OutboundTypeStopTyping,
			Data: proto.TypingData{Username: event.Username},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.UserLeftData{Username: event.Username, NumUsers: event.NumUsers},
		}
	default:
		return proto.Outbound{Type: "event"}
	}
}
