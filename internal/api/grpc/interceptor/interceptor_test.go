package interceptor

import (
	"context"
	"testing"
	"time"

	"farmshare-backend/internal/security"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func echoUser(ctx context.Context, req interface{}) (interface{}, error) {
	u, ok := security.UserFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return u.UserID, nil
}

func TestAuthInterceptor_Unary(t *testing.T) {
	tm := security.NewTokenManager("test-secret", time.Hour)
	unary := NewAuthInterceptor(tm).Unary()

	withToken := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	}

	t.Run("PublicHealth", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		resp, err := unary(context.Background(), nil, info, echoUser)
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("MissingMetadata", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/farmshare.v1.Unknown/Call"}
		_, err := unary(context.Background(), nil, info, echoUser)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidToken", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/farmshare.v1.Unknown/Call"}
		_, err := unary(withToken("garbage"), nil, info, echoUser)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("NonAdminRejected", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(uuid.New(), "", []string{security.RoleFarmer})
		require.NoError(t, err)
		info := &grpc.UnaryServerInfo{FullMethod: "/farmshare.v1.Unknown/Call"}
		_, err = unary(withToken(token), nil, info, echoUser)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		id := uuid.New()
		token, err := tm.GenerateAccessToken(id, "", []string{security.RoleAdmin})
		require.NoError(t, err)
		info := &grpc.UnaryServerInfo{FullMethod: "/farmshare.v1.Unknown/Call"}
		resp, err := unary(withToken(token), nil, info, echoUser)
		require.NoError(t, err)
		assert.Equal(t, id, resp)
	})
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestAuthInterceptor_Stream(t *testing.T) {
	tm := security.NewTokenManager("test-secret", time.Hour)
	stream := NewAuthInterceptor(tm).Stream()
	reflectionInfo := &grpc.StreamServerInfo{FullMethod: "/grpc.reflection.v1.ServerReflection/ServerReflectionInfo", IsServerStream: true}

	streamWithToken := func(token string) *fakeStream {
		md := metadata.Pairs("authorization", "Bearer "+token)
		return &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), md)}
	}

	var seen uuid.UUID
	handler := func(srv interface{}, ss grpc.ServerStream) error {
		if u, ok := security.UserFromContext(ss.Context()); ok {
			seen = u.UserID
		}
		return nil
	}

	t.Run("PublicWatch", func(t *testing.T) {
		info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}
		err := stream(nil, &fakeStream{ctx: context.Background()}, info, handler)
		assert.NoError(t, err)
	})

	t.Run("ReflectionWithoutToken", func(t *testing.T) {
		called := false
		err := stream(nil, &fakeStream{ctx: context.Background()}, reflectionInfo, func(srv interface{}, ss grpc.ServerStream) error {
			called = true
			return nil
		})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.False(t, called)
	})

	t.Run("ReflectionNonAdmin", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(uuid.New(), "", []string{security.RoleFarmer})
		require.NoError(t, err)
		err = stream(nil, streamWithToken(token), reflectionInfo, handler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("ReflectionAdmin", func(t *testing.T) {
		id := uuid.New()
		token, err := tm.GenerateAccessToken(id, "", []string{security.RoleAdmin})
		require.NoError(t, err)
		err = stream(nil, streamWithToken(token), reflectionInfo, handler)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})
}

func TestLoggingUnary_RecoversPanic(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	_, err := LoggingUnary()(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := LoggingUnary()(context.Background(), "ping", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return req, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ping", resp)
}

func TestLoggingStream_RecoversPanic(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}
	err := LoggingStream()(nil, &fakeStream{ctx: context.Background()}, info, func(srv interface{}, ss grpc.ServerStream) error {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
