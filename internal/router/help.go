package router

const baseHelp = `사용 가능한 명령어:
*도움말 - 이 도움말을 표시합니다
*공략 [키워드] - 공략 검색
*저장 [키워드] [URL] - 사이트 저장
*사이트 [키워드] - 사이트 조회
*목록 - 저장된 사이트 목록
*통계 [사용자ID] - 채팅 통계
*토큰 - 이번 달 토큰 사용량
*생일 - 오늘의 캐릭터 생일
*쓰담 - 쓰다듬기 알림`

const adminHelp = `

[프롬프트 관리]
*프롬프트 목록 - 저장된 프롬프트 목록
*프롬프트 보기 - 현재 프롬프트 내용
*프롬프트 추가 [이름] [내용] - 새 프롬프트 추가
*프롬프트 사용 [이름] - 프롬프트 변경
*프롬프트 수정 [이름] [내용] - 프롬프트 수정
*temperature [값] - 응답 다양성 설정
*관리자추가 [ID] / *관리자삭제 [ID] - 관리자 관리`

func helpText(adminRoom bool) string {
	if adminRoom {
		return baseHelp + adminHelp
	}
	return baseHelp
}
