package handlers

import "github.com/gin-gonic/gin"

// AuthHandlerInterface defines the methods needed by the auth routes.
type AuthHandlerInterface interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Refresh(c *gin.Context)
	Logout(c *gin.Context)
}

// UserHandlerInterface defines the methods needed by the user routes.
type UserHandlerInterface interface {
	GetMyProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	GetProfile(c *gin.Context)
}

type JobHandlerInterface interface {
	CreateJob(c *gin.Context)
	ListJobs(c *gin.Context)
	ListMyJobs(c *gin.Context)
	GetJobByID(c *gin.Context)
	EditJob(c *gin.Context)
	DeleteJob(c *gin.Context)
	RepostJob(c *gin.Context)
}

type ProposalHandlerInterface interface {
	ListProposals(c *gin.Context)
	SubmitProposal(c *gin.Context)
	AcceptProposal(c *gin.Context)
	DeclineProposal(c *gin.Context)
	WithdrawProposal(c *gin.Context)
}

type EscrowHandlerInterface interface {
	Quote(c *gin.Context)
	FundEscrow(c *gin.Context)
	SubmitWork(c *gin.Context)
	ApproveWork(c *gin.Context)
}

type ReviewHandlerInterface interface {
	AddReview(c *gin.Context)
	ListReviews(c *gin.Context)
}

type MessageHandlerInterface interface {
	SendJobMessage(c *gin.Context)
	SendDirectMessage(c *gin.Context)
	Inbox(c *gin.Context)
	DirectConversation(c *gin.Context)
	JobConversation(c *gin.Context)
	Stream(c *gin.Context)
}

type ContactHandlerInterface interface {
	SubmitContact(c *gin.Context)
	ListMyContacts(c *gin.Context)
	ListContacts(c *gin.Context)
	RespondContact(c *gin.Context)
}

// AdminHandlerInterface defines the methods needed by the admin console routes.
type AdminHandlerInterface interface {
	Stats(c *gin.Context)
	ListUsers(c *gin.Context)
	ListJobs(c *gin.Context)
	ListPayments(c *gin.Context)
	Inbox(c *gin.Context)
	VerifyUser(c *gin.Context)
	SetPaymentStatus(c *gin.Context)
	CancelJob(c *gin.Context)
	DeleteUser(c *gin.Context)
	DeleteJob(c *gin.Context)
}

// Ensure handlers implement the interfaces (compile-time check)
var _ AuthHandlerInterface = (*AuthHandler)(nil)
var _ UserHandlerInterface = (*UserHandler)(nil)
var _ JobHandlerInterface = (*JobHandler)(nil)
var _ ProposalHandlerInterface = (*ProposalHandler)(nil)
var _ EscrowHandlerInterface = (*EscrowHandler)(nil)
var _ ReviewHandlerInterface = (*ReviewHandler)(nil)
var _ MessageHandlerInterface = (*MessageHandler)(nil)
var _ ContactHandlerInterface = (*ContactHandler)(nil)
var _ AdminHandlerInterface = (*AdminHandler)(nil)
