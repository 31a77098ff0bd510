package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/models"
	"github.com/wfunc/cardserver/network"
	"github.com/wfunc/cardserver/room"
	"github.com/wfunc/cardserver/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the
// caller before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc.
type AdminService struct {
	rooms   *room.Manager
	records *services.RecordService
}

// NewAdminService creates an AdminService. records may be nil when the
// server runs without persistence.
func NewAdminService(rooms *room.Manager, records *services.RecordService) *AdminService {
	return &AdminService{rooms: rooms, records: records}
}

type ActiveRoomsArgs struct{}

type ActiveRoomsReply struct {
	Codes []string
}

func (a *AdminService) ActiveRooms(args *ActiveRoomsArgs, reply *ActiveRoomsReply) error {
	reply.Codes = a.rooms.ActiveCodes()
	return nil
}

type RoomStateArgs struct {
	Code string
}

type RoomStateReply struct {
	Room     network.RoomInfo
	Inactive bool
}

func (a *AdminService) RoomState(args *RoomStateArgs, reply *RoomStateReply) error {
	r, exists := a.rooms.GetAny(args.Code)
	if !exists {
		return room.ErrRoomNotFound
	}
	reply.Room = r.Info()
	reply.Inactive = r.Inactive
	return nil
}

type RoomSnapshotArgs struct {
	Code string
}

type RoomSnapshotReply struct {
	Snapshot models.RoomSnapshot
}

// RoomSnapshot returns the last persisted snapshot of a room, which
// survives the in-memory room going inactive.
func (a *AdminService) RoomSnapshot(args *RoomSnapshotArgs, reply *RoomSnapshotReply) error {
	if a.records == nil {
		return errors.New("persistence disabled")
	}
	snap, err := a.records.GetRoomSnapshot(room.NormalizeCode(args.Code))
	if err != nil {
		return err
	}
	reply.Snapshot = *snap
	return nil
}

type PlayerStatsArgs struct {
	Identity string
}

type PlayerStatsReply struct {
	Stats models.PlayerStats
}

func (a *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	if a.records == nil {
		return errors.New("persistence disabled")
	}
	stats, err := a.records.GetPlayerStats(args.Identity)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	return nil
}
